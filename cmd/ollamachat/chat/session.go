package chatcmder

import (
	"context"

	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/ollama"
)

// session holds one in-memory conversation.
type session struct {
	client  *ollama.Client
	model   string
	system  string
	options llm.Options

	transcript []llm.Message
}

// generate asks for a reply to prompt given the turns so far. The transcript
// is not modified; record adds the turn once the reply is accepted.
func (s *session) generate(ctx context.Context, prompt string) (ollama.Result, error) {
	return s.client.Generate(ctx, prompt, ollama.GenerateOptions{
		SystemPrompt: s.system,
		Messages:     s.transcript,
		Model:        s.model,
		Options:      s.options,
		KeepHTML:     true,
	})
}

func (s *session) record(prompt, reply string) {
	s.transcript = append(s.transcript,
		llm.Message{Role: llm.RoleUser, Content: prompt},
		llm.Message{Role: llm.RoleAssistant, Content: reply},
	)
}

func (s *session) reset() {
	s.transcript = nil
}
