package generatecmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ollamachat/cmd/ollamachat/prefsflags"
	"github.com/papercomputeco/ollamachat/cmd/ollamachat/termout"
	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
	"github.com/papercomputeco/ollamachat/pkg/render"
)

const generateLongDesc string = `Generate a single reply from the inference server.

The prompt is sent to /api/generate. The preferred system prompt is not
applied unless --system is given. Images may be file paths, http(s) URLs
or data URLs. Sampling options take JSON values, anything that is not
valid JSON is sent as a string.

Examples:
  ollamachat generate "Why is the sky blue?"
  ollamachat generate --model llava:latest --image cat.png "What is in this picture?"
  ollamachat generate --option temperature=0.2 --option stop='["\n"]' "Name a robot"
  ollamachat generate --full "Hello" | jq .eval_count`

const generateShortDesc string = "Generate a reply to a prompt"

type generateCommander struct {
	flags *prefsflags.Flags

	model    string
	system   string
	images   []string
	options  []string
	full     bool
	keepHTML bool
	plain    bool
}

func NewGenerateCmd(flags *prefsflags.Flags) *cobra.Command {
	cmder := &generateCommander{flags: flags}

	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default: preferred model, or llama2/llava)")
	cmd.Flags().StringVar(&cmder.system, "system", "", "System prompt placed before the prompt")
	cmd.Flags().StringArrayVarP(&cmder.images, "image", "i", nil, "Image to attach (repeatable)")
	cmd.Flags().StringArrayVarP(&cmder.options, "option", "o", nil, "Sampling option as key=value (repeatable)")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print the whole server response as JSON")
	cmd.Flags().BoolVar(&cmder.keepHTML, "keep-html", false, "Do not escape < and > in the reply")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the reply without markdown rendering")

	return cmd
}

func (c *generateCommander) run(ctx context.Context, cmd *cobra.Command, prompt string) error {
	options, err := ParseOptions(c.options)
	if err != nil {
		return err
	}

	prefs, err := c.flags.Preferences()
	if err != nil {
		return err
	}

	log := c.flags.Logger(cmd.ErrOrStderr())
	defer log.Sync()

	client := prefsflags.Client(prefs, log)
	result, err := client.Generate(ctx, prompt, ollama.GenerateOptions{
		SystemPrompt: c.system,
		Images:       c.images,
		Model:        c.model,
		Options:      options,
		FullResponse: c.full,
		KeepHTML:     c.keepHTML,
	})
	if err != nil {
		return fmt.Errorf("could not generate a reply from %s: %w", client.Server(), err)
	}

	out := cmd.OutOrStdout()
	if c.full {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Raw)
	}

	if c.plain || !termout.IsTerminal(out) {
		fmt.Fprintln(out, result.Text)
		return nil
	}

	md, err := render.NewMarkdown(termout.Width(out), "")
	if err != nil {
		fmt.Fprintln(out, result.Text)
		return nil
	}
	fmt.Fprintln(out, md.Render(result.Text))
	return nil
}

// ParseOptions turns key=value pairs into sampling options. Values are
// decoded as JSON when possible and kept as strings otherwise.
func ParseOptions(pairs []string) (llm.Options, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	options := llm.Options{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, expected key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		options[key] = value
	}
	return options, nil
}
