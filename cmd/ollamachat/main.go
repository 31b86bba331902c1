package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/chat"
	configcmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/config"
	generatecmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/generate"
	mcpcmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/mcp"
	modelscmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/models"
	optionscmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/options"
	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	servecmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/serve"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const rootLongDesc string = `ollamachat talks to an Ollama-compatible inference server.

Preferences (server, model, system prompt, speech) are read from a TOML
file in the user config directory; see "ollamachat config path".`

func newRootCmd() *cobra.Command {
	flags := &prefsflags.Flags{}

	cmd := &cobra.Command{
		Use:          "ollamachat",
		Short:        "Chat with an Ollama-compatible inference server",
		Long:         rootLongDesc,
		Version:      version,
		SilenceUsage: true,
	}
	flags.Register(cmd)

	cmd.AddCommand(
		generatecmder.NewGenerateCmd(flags),
		chatcmder.NewChatCmd(flags),
		modelscmder.NewModelsCmd(flags),
		optionscmder.NewOptionsCmd(),
		configcmder.NewConfigCmd(flags),
		servecmder.NewServeCmd(flags),
		mcpcmder.NewMCPCmd(flags, version),
	)

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
