package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultLocalModel is the model used against a local Ollama server
// when no model flag or env var overrides it.
const DefaultLocalModel = "qwen3:30b"

// OpenAIClient speaks the OpenAI chat-completions protocol. With a
// BaseURL override it also covers Ollama, which exposes the same
// protocol at /v1.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAI creates a client against the real OpenAI API.
func NewOpenAI(apiKey, model string, logger *zap.Logger) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: ensure(logger),
	}
}

// NewOllama creates a client against a local Ollama server.
// host is e.g. "http://localhost:11434"; the /v1 suffix is appended
// here.
func NewOllama(host, model string, logger *zap.Logger) *OpenAIClient {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultLocalModel
	}
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the key
	cfg.BaseURL = strings.TrimRight(host, "/") + "/v1"
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: ensure(logger),
	}
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, nil)
}

func (c *OpenAIClient) CompleteWithTemperature(ctx context.Context, prompt string, temperature float32) (string, error) {
	return c.complete(ctx, prompt, &temperature)
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, temperature *float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if temperature != nil {
		req.Temperature = *temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices returned")
	}
	c.logger.Debug("completion received",
		zap.String("model", c.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}

func ensure(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
