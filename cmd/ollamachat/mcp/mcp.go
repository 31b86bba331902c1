package mcpcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/mcpserver"
)

const mcpLongDesc string = `Serve the chat client as Model Context Protocol tools over stdio.

Tools: generate, list_models, default_options. Logs go to stderr.

Example client configuration:
  {"command": "ollamachat", "args": ["mcp", "--server", "http://127.0.0.1:11434"]}`

const mcpShortDesc string = "Serve MCP tools over stdio"

type mcpCommander struct {
	flags   *prefsflags.Flags
	version string
}

func NewMCPCmd(flags *prefsflags.Flags, version string) *cobra.Command {
	cmder := &mcpCommander{flags: flags, version: version}

	return &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := cmder.flags.Preferences()
			if err != nil {
				return err
			}

			log := cmder.flags.Logger(cmd.ErrOrStderr())
			defer log.Sync()

			server := mcpserver.New(prefsflags.Client(prefs, log), log, cmder.version)
			return server.Run(cmd.Context())
		},
	}
}
