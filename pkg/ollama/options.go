package ollama

import (
	"github.com/papercomputeco/ollamachat/pkg/llm"
)

// GenerateOptions configures a single Generate call. The zero value asks for
// the escaped reply text only, using generate mode and the default model.
type GenerateOptions struct {
	// SystemPrompt is prepended as a system message in chat mode, or as a
	// prefix followed by a blank line in generate mode.
	SystemPrompt string

	// Messages are prior turns. A non-empty slice switches to chat mode.
	// The slice is not modified.
	Messages []llm.Message

	// Images are data URLs ("data:image/...") or references to load: file
	// paths, file:// URLs or http(s):// URLs.
	Images []string

	// Model overrides the mode-dependent default model.
	Model string

	// FullResponse returns the whole decoded server response instead of
	// only the generated text.
	FullResponse bool

	// KeepHTML disables escaping of '<' and '>' in the reply text.
	// Only meaningful when FullResponse is false.
	KeepHTML bool

	// Stream forwards stream=true to the server. Only the first fragment of
	// the streamed body is returned.
	Stream bool

	// Options are model sampling parameters, passed through verbatim.
	Options llm.Options

	// Callback, when set, is invoked exactly once with the call's Result
	// (Failed on any failure).
	Callback func(Result)
}

// mode reports the request mode selected by the options.
func (o GenerateOptions) mode() Mode {
	if len(o.Messages) > 0 {
		return ModeChat
	}
	return ModeGenerate
}

// buildRequest composes the request payload for the selected mode.
func buildRequest(mode Mode, model, prompt string, opts GenerateOptions, images []string) any {
	options := opts.Options
	if options == nil {
		options = llm.Options{}
	}

	if mode == ModeChat {
		messages := make([]llm.Message, 0, len(opts.Messages)+2)
		if opts.SystemPrompt != "" {
			messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: opts.SystemPrompt})
		}
		messages = append(messages, opts.Messages...)
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

		return &llm.ChatRequest{
			Model:    model,
			Stream:   opts.Stream,
			Options:  options,
			Messages: messages,
			Images:   images,
		}
	}

	if opts.SystemPrompt != "" {
		prompt = opts.SystemPrompt + "\n\n" + prompt
	}

	return &llm.GenerateRequest{
		Model:   model,
		Stream:  opts.Stream,
		Options: options,
		Prompt:  prompt,
		Images:  images,
	}
}
