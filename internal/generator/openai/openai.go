// Package openai provides a generator adapter for OpenAI-compatible chat APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"heritage-rag/internal/generator"
)

var _ generator.Generator = (*Generator)(nil)

type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// Generator sends the prompt as a single user message.
type Generator struct {
	client *openai.Client
	model  string
}

func New(cfg Config) (*Generator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Generator{client: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

func (g *Generator) Model() string { return g.model }

func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}
	return nil
}

// Generate ignores TopK, which the chat completions API does not expose.
func (g *Generator) Generate(ctx context.Context, prompt string, opts generator.Options) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if generator.Unreachable(ctx, err) {
			return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
