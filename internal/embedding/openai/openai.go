package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"heritage-rag/internal/embedding"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	client     *openai.Client
	model      string
	dimension  atomic.Int64
	batchSize  int
	maxRetries int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = embedding.DefaultBatchSize
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: t}

	return &Client{
		client:     openai.NewClientWithConfig(oc),
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Dimension is set lazily on first embed.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in groups, retrying rate-limited and server-side failures.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, batch := range embedding.Batches(texts, c.batchSize) {
		vecs, err := c.embedWithRetry(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	if len(out) > 0 {
		c.dimension.CompareAndSwap(0, int64(len(out[0])))
	}
	return out, nil
}

func (c *Client) embedWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: batch,
		})
		if err == nil {
			return toVectors(resp, len(batch))
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay(attempt)):
		}
	}
	return nil, fmt.Errorf("openai embeddings failed: %w", lastErr)
}

func toVectors(resp openai.EmbeddingResponse, want int) ([][]float32, error) {
	if len(resp.Data) != want {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), want)
	}
	out := make([][]float32, want)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= want {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		embedding.Normalize(v)
		out[d.Index] = v
	}
	return out, nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
