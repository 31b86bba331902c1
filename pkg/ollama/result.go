package ollama

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/ollamachat/pkg/llm"
	"github.com/papercomputeco/ollamachat/pkg/render"
)

// Result is the normalized outcome of a Generate call. Mode tags which
// envelope is populated: Generate for ModeGenerate, Chat for ModeChat.
//
// In response-only mode only Text is set, escaped unless KeepHTML was asked.
// With FullResponse the typed envelope and Raw (the whole decoded body) are
// set as well, and Text holds the unescaped reply.
type Result struct {
	Mode Mode
	Text string

	Generate *llm.GenerateResponse
	Chat     *llm.ChatResponse
	Raw      map[string]any
}

// Failed is the failure sentinel delivered to callbacks and returned by
// Generate whenever a call does not succeed.
var Failed = Result{}

// OK reports whether r is a successful result.
func (r Result) OK() bool {
	return r.Mode != 0
}

// IsFull reports whether r carries the whole decoded response.
func (r Result) IsFull() bool {
	return r.Raw != nil
}

// shapeResult decodes the first JSON object of body and selects the
// mode-appropriate reply. A streamed body yields its first fragment only.
func shapeResult(mode Mode, body []byte, opts GenerateOptions) (Result, error) {
	var first json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&first); err != nil {
		return Failed, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(first, &raw); err != nil || raw == nil {
		return Failed, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	var errResp llm.ErrorResponse
	if err := json.Unmarshal(first, &errResp); err == nil && errResp.Error != "" {
		return Failed, fmt.Errorf("%w: %s", ErrServer, errResp.Error)
	}

	result := Result{Mode: mode}

	switch mode {
	case ModeChat:
		if _, ok := raw["message"].(map[string]any); !ok {
			return Failed, fmt.Errorf("%w: chat response without message", ErrMalformedResponse)
		}
		var resp llm.ChatResponse
		if err := json.Unmarshal(first, &resp); err != nil {
			return Failed, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		result.Text = resp.Message.Content
		if opts.FullResponse {
			result.Chat = &resp
		}
	default:
		if _, ok := raw["response"].(string); !ok {
			return Failed, fmt.Errorf("%w: generate response without response text", ErrMalformedResponse)
		}
		var resp llm.GenerateResponse
		if err := json.Unmarshal(first, &resp); err != nil {
			return Failed, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		result.Text = resp.Response
		if opts.FullResponse {
			result.Generate = &resp
		}
	}

	if opts.FullResponse {
		result.Raw = raw
		return result, nil
	}

	if !opts.KeepHTML {
		result.Text = render.EscapeHTML(result.Text)
	}

	return result, nil
}
