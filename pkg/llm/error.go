// Package llm provides representations of the Ollama inference API requests
// and responses used by the chat client.
package llm

// ErrorResponse represents an error body from the LLM API.
// Ollama reports failures as {"error": "..."} on both generate and chat endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
