package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient runs completions through Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGemini creates a Gemini-backed client.
func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, logger: ensure(logger)}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

func (c *GeminiClient) CompleteWithTemperature(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("llm: gemini returned empty response")
	}
	c.logger.Debug("completion received", zap.String("model", c.model))
	return text, nil
}
