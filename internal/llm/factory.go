package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// NewFromEnv picks a backend. An explicit provider ("ollama",
// "openai", "gemini") wins; otherwise the first configured API key
// decides, falling back to a local Ollama server.
func NewFromEnv(ctx context.Context, provider, model string, logger *zap.Logger) (Client, error) {
	switch provider {
	case "ollama":
		return NewOllama(os.Getenv("OLLAMA_HOST"), model, logger), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("llm: OPENAI_API_KEY not set")
		}
		return NewOpenAI(key, model, logger), nil
	case "gemini":
		return NewGemini(ctx, os.Getenv("GEMINI_API_KEY"), model, logger)
	case "":
		// Fall through to auto-detection.
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key, model, logger), nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return NewGemini(ctx, key, model, logger)
	}
	return NewOllama(os.Getenv("OLLAMA_HOST"), model, logger), nil
}
