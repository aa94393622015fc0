// Package ollama provides a generator adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"heritage-rag/internal/generator"
)

var _ generator.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultHost    = "http://localhost:11434"
	DefaultModel   = "llama3"
	DefaultTimeout = 120 * time.Second
)

type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// Generator calls /api/generate without streaming.
type Generator struct {
	client *api.Client
	model  string
}

func New(cfg Config) (*Generator, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}
	return &Generator{
		client: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:  cfg.Model,
	}, nil
}

func (g *Generator) Model() string { return g.model }

// Ping lists local models; any failure means the server is unavailable.
func (g *Generator) Ping(ctx context.Context) error {
	if _, err := g.client.List(ctx); err != nil {
		return fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}
	return nil
}

// Models returns the names of the models installed on the server.
func (g *Generator) Models(ctx context.Context) ([]string, error) {
	resp, err := g.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts generator.Options) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
			"top_k":       opts.TopK,
			"top_p":       opts.TopP,
		},
	}

	var out strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		if generator.Unreachable(ctx, err) {
			return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
