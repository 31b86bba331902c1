package modelscmder

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
)

const modelsLongDesc string = `List the models available on the inference server.

Exits with an error when no model can be listed, which makes the command
usable as a connectivity check.

Examples:
  ollamachat models
  ollamachat models --server http://gpu-box:11434`

const modelsShortDesc string = "List available models"

type modelsCommander struct {
	flags *prefsflags.Flags
	quiet bool
}

func NewModelsCmd(flags *prefsflags.Flags) *cobra.Command {
	cmder := &modelsCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print model names only")

	return cmd
}

func (c *modelsCommander) run(ctx context.Context, cmd *cobra.Command) error {
	prefs, err := c.flags.Preferences()
	if err != nil {
		return err
	}

	log := c.flags.Logger(cmd.ErrOrStderr())
	defer log.Sync()

	client := prefsflags.Client(prefs, log)
	models := client.Models(ctx, nil)
	if len(models) == 0 {
		return fmt.Errorf("no models found on %s", client.Server())
	}

	out := cmd.OutOrStdout()
	if c.quiet {
		for _, m := range models {
			fmt.Fprintln(out, m.Name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tPARAMETERS\tQUANTIZATION")
	for _, m := range models {
		var params, quant string
		if m.Details != nil {
			params = m.Details.ParameterSize
			quant = m.Details.QuantizationLevel
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, humanSize(m.Size), params, quant)
	}
	return tw.Flush()
}

func humanSize(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "kMGTPE"[exp])
}
