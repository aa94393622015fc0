// Package ollama embeds text through a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"

	"heritage-rag/internal/embedding"
)

// Config configures the Ollama embeddings client.
type Config struct {
	Host      string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// Client calls the Ollama /api/embed endpoint in sub-batches.
type Client struct {
	api       *api.Client
	model     string
	batchSize int

	mu        sync.RWMutex
	dimension int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = embedding.DefaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
	}
	return &Client{
		api:       api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "ollama:" + c.model }

// Dimension is learned from the first response.
func (c *Client) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in groups of the configured batch size.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, batch := range embedding.Batches(texts, c.batchSize) {
		resp, err := c.api.Embed(ctx, &api.EmbedRequest{
			Model: c.model,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embed batch %d: %w", i, err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("ollama embed batch %d: got %d vectors for %d inputs", i, len(resp.Embeddings), len(batch))
		}
		out = append(out, resp.Embeddings...)
	}
	if len(out) > 0 {
		if len(out[0]) == 0 {
			return nil, errors.New("ollama returned empty embedding")
		}
		c.mu.Lock()
		c.dimension = len(out[0])
		c.mu.Unlock()
	}
	return out, nil
}
