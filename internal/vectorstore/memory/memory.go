package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/vectorstore"
)

// Index is a simple in-memory vector index using brute-force squared L2.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func NewIndex() *Index { return &Index{collections: make(map[string]*Collection)} }

func (x *Index) CreateCollection(_ context.Context, name string, opts vectorstore.CollectionOptions) (vectorstore.Collection, error) {
	if name == "" {
		return nil, errors.New("empty collection name")
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.collections[name]; ok {
		return nil, fmt.Errorf("collection %q already exists", name)
	}
	c := &Collection{name: name, dimension: opts.Dimension, ids: make(map[string]struct{})}
	x.collections[name] = c
	return c, nil
}

func (x *Index) DeleteCollection(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.collections, name)
	return nil
}

func (x *Index) GetCollection(_ context.Context, name string) (vectorstore.Collection, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	c, ok := x.collections[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, vectorstore.ErrCollectionNotFound)
	}
	return c, nil
}

func (x *Index) Close() error { return nil }

// Collection holds entries in insertion order.
type Collection struct {
	mu        sync.RWMutex
	name      string
	dimension int
	entries   []domain.IndexEntry
	ids       map[string]struct{}
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Add(_ context.Context, entries []domain.IndexEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		if c.dimension > 0 && len(e.Embedding) != c.dimension {
			return vectorstore.ErrDimensionMismatch
		}
		if _, dup := c.ids[e.ID]; dup {
			return fmt.Errorf("duplicate id %q", e.ID)
		}
	}
	for _, e := range entries {
		if c.dimension == 0 {
			c.dimension = len(e.Embedding)
		}
		c.ids[e.ID] = struct{}{}
		c.entries = append(c.entries, e)
	}
	return nil
}

func (c *Collection) Query(_ context.Context, embedding []float32, n int) ([]vectorstore.Neighbor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.dimension > 0 && len(embedding) != c.dimension {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(embedding), c.dimension, vectorstore.ErrDimensionMismatch)
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]vectorstore.Neighbor, len(c.entries))
	for i, e := range c.entries {
		out[i] = vectorstore.Neighbor{
			ID:       e.ID,
			Document: e.Document,
			Metadata: e.Metadata,
			Distance: vectorstore.SquaredL2(e.Embedding, embedding),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if n < len(out) {
		out = out[:n]
	}
	return out, nil
}

func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}
