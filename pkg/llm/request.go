package llm

// GenerateRequest represents a single-turn request to /api/generate.
type GenerateRequest struct {
	Model   string   `json:"model"`            // Model name (e.g., "llama2:latest")
	Stream  bool     `json:"stream"`           // Ollama defaults to true, the client sends false unless asked
	Options Options  `json:"options"`          // Sampling parameters, sent as {} when empty
	Prompt  string   `json:"prompt"`           // System prompt (if any) + blank line + user prompt
	Images  []string `json:"images,omitempty"` // Embedded data-URL images
}

// ChatRequest represents a multi-turn request to /api/chat.
type ChatRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
	Messages []Message `json:"messages"`         // Conversation history, new user turn last
	Images   []string  `json:"images,omitempty"` // Embedded data-URL images
}
