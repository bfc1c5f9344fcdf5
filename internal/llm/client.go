// Package llm abstracts the model backends the pipeline can talk to:
// a local Ollama server via its OpenAI-compatible endpoint, the real
// OpenAI API, or Google Gemini.
package llm

import "context"

// Client is a single-turn text completion backend. Implementations
// return the raw model output; callers strip reasoning blocks and
// extract SQL themselves.
type Client interface {
	// Complete runs the prompt at the backend's default temperature.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithTemperature runs the prompt at an explicit
	// temperature. SQL generation wants it low; strategy drafting
	// wants it higher.
	CompleteWithTemperature(ctx context.Context, prompt string, temperature float32) (string, error)

	// Model reports the backend model identifier, for logging.
	Model() string
}
