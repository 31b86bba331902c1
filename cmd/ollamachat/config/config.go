package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/pkg/config"
)

const configLongDesc string = `Read and write the stored preferences.

Preferences are kept in a TOML file under the user config directory
(see "ollamachat config path"). Keys: server, model, systemprompt, tts,
ttsvoice, ttsrate.

Examples:
  ollamachat config get
  ollamachat config get model
  ollamachat config set server http://gpu-box:11434
  ollamachat config set systemprompt "Answer in one sentence"`

const configShortDesc string = "Read and write preferences"

type configCommander struct {
	flags *prefsflags.Flags
}

func NewConfigCmd(flags *prefsflags.Flags) *cobra.Command {
	cmder := &configCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print one or all preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.get(cmd, args)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.set(cmd, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the preferences file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmder.flags.ResolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}

func (c *configCommander) get(cmd *cobra.Command, args []string) error {
	path, err := c.flags.ResolveConfigPath()
	if err != nil {
		return err
	}
	prefs, err := config.Load(path)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		value, err := prefs.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	for _, key := range config.Keys {
		value, _ := prefs.Get(key)
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", key, value)
	}
	return nil
}

func (c *configCommander) set(cmd *cobra.Command, key, value string) error {
	path, err := c.flags.ResolveConfigPath()
	if err != nil {
		return err
	}
	prefs, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := prefs.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(path, prefs); err != nil {
		return fmt.Errorf("could not save preferences: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, path)
	return nil
}
