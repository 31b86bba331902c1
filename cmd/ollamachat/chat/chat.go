package chatcmder

import (
	"context"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	generatecmder "github.com/papercomputeco/ollamachat/cmd/ollamachat/generate"
	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/cmd/ollamachat/termout"
	"github.com/papercomputeco/ollamachat/pkg/render"
)

const chatLongDesc string = `Chat with a model.

The conversation is kept in memory for the life of the command. The first
message goes to /api/generate; later ones go to /api/chat with the turns so
far. Type /reset to start over and /exit to leave.

When stdin and stdout are a terminal a full-screen chat is shown, otherwise
one prompt is read per line and each reply is printed on its own line.

Examples:
  ollamachat chat
  ollamachat chat --model mistral:latest --system "Answer in one sentence"
  printf 'hi\nand again\n' | ollamachat chat`

const chatShortDesc string = "Chat with a model"

type chatCommander struct {
	flags *prefsflags.Flags

	model    string
	system   string
	noSystem bool
	options  []string
	plain    bool
}

func NewChatCmd(flags *prefsflags.Flags) *cobra.Command {
	cmder := &chatCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default: preferred model, or llama2)")
	cmd.Flags().StringVar(&cmder.system, "system", "", "System prompt (default: preferred system prompt)")
	cmd.Flags().BoolVar(&cmder.noSystem, "no-system", false, "Send no system prompt")
	cmd.Flags().StringArrayVarP(&cmder.options, "option", "o", nil, "Sampling option as key=value (repeatable)")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Read prompts line by line even on a terminal")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	options, err := generatecmder.ParseOptions(c.options)
	if err != nil {
		return err
	}

	prefs, err := c.flags.Preferences()
	if err != nil {
		return err
	}

	system := prefs.SystemPrompt
	if c.system != "" {
		system = c.system
	}
	if c.noSystem {
		system = ""
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	interactive := !c.plain && termout.IsTerminal(out) && isTerminalReader(in)

	log, closeLog, err := c.logger(cmd, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	s := &session{
		client:  prefsflags.Client(prefs, log),
		model:   c.model,
		system:  system,
		options: options,
	}

	if !interactive {
		return runREPL(ctx, in, out, s)
	}

	model := newTUIModel(ctx, s, render.DetectStyle())
	_, err = tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	return err
}

// logger writes to stderr in line mode. The full-screen chat owns the
// terminal, so its logs go to a file under the temp dir when --debug is set
// and nowhere otherwise.
func (c *chatCommander) logger(cmd *cobra.Command, interactive bool) (*zap.Logger, func(), error) {
	if !interactive {
		log := c.flags.Logger(cmd.ErrOrStderr())
		return log, func() { _ = log.Sync() }, nil
	}
	if !c.flags.Debug {
		return zap.NewNop(), func() {}, nil
	}

	f, err := tea.LogToFile(filepath.Join(os.TempDir(), "ollamachat-chat.log"), "")
	if err != nil {
		return nil, nil, err
	}
	log := c.flags.Logger(f)
	return log, func() {
		_ = log.Sync()
		_ = f.Close()
	}, nil
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && termout.IsTerminal(f)
}
