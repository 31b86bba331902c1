// Package ollama provides a client for an Ollama-compatible inference server.
// It composes single-turn (generate) and multi-turn (chat) requests, embeds
// images as data URLs, and normalizes both response shapes into a Result.
package ollama

import (
	"errors"
	"time"
)

// Default configuration constants
const (
	DefaultServer     = "http://127.0.0.1:11434"
	DefaultTextModel  = "llama2:latest"
	DefaultImageModel = "llava:latest"

	// LLM requests can be slow, especially on first model load
	DefaultTimeout = 5 * time.Minute
)

// API endpoints
const (
	EndpointGenerate = "/api/generate"
	EndpointChat     = "/api/chat"
	EndpointTags     = "/api/tags"
)

// Sentinel errors for client operations. Every failed Generate call wraps
// ErrGenerationFailed together with the more specific cause.
var (
	// ErrGenerationFailed is wrapped by every error returned from Generate
	ErrGenerationFailed = errors.New("ollama generation failed")
	// ErrEmptyPrompt is returned when Generate is called without a prompt
	ErrEmptyPrompt = errors.New("no prompt provided")
	// ErrImageEncoding is returned when an image reference cannot be embedded
	ErrImageEncoding = errors.New("image encoding failed")
	// ErrServer is returned when the server answers with an error body
	ErrServer = errors.New("ollama server error")
	// ErrMalformedResponse is returned when the body is not the expected JSON object
	ErrMalformedResponse = errors.New("malformed response")
)

// Mode selects the endpoint and the response shape of a generate call.
type Mode int

const (
	// ModeGenerate is a single-turn request using a flat prompt string.
	ModeGenerate Mode = iota + 1
	// ModeChat is a multi-turn request using a role-tagged transcript.
	ModeChat
)

func (m Mode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeChat:
		return "chat"
	default:
		return "none"
	}
}

func (m Mode) endpoint() string {
	if m == ModeChat {
		return EndpointChat
	}
	return EndpointGenerate
}
