package llm

// Options is the map of model inference parameters passed through verbatim
// in the "options" field of a request (temperature, top_k, repeat_penalty, ...).
type Options map[string]any

// DefaultOptions returns the minimal set of sampling parameters used to scaffold
// a configuration form. A fresh map is returned on every call.
//
// All available options are documented in the Ollama API reference under
// "generate request with options".
func DefaultOptions() Options {
	return Options{
		"temperature":    0.8,
		"repeat_penalty": 1.2,
	}
}
