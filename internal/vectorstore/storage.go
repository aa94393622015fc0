package vectorstore

import (
	"context"
	"errors"

	"heritage-rag/internal/domain"
)

// ErrCollectionNotFound is returned by GetCollection when the named
// collection does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrDimensionMismatch is returned by Query when the query vector does not
// have the collection's dimension, typically after the embedder changed.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CollectionOptions configures a new collection.
type CollectionOptions struct {
	Dimension int
	Metadata  map[string]string
}

// Neighbor is one nearest-neighbour hit. Distance is the squared Euclidean
// distance between the query and the stored vector.
type Neighbor struct {
	ID       string
	Document string
	Metadata domain.Metadata
	Distance float64
}

// Index manages named collections of embedded chunks.
type Index interface {
	CreateCollection(ctx context.Context, name string, opts CollectionOptions) (Collection, error)
	// DeleteCollection succeeds when the collection does not exist.
	DeleteCollection(ctx context.Context, name string) error
	GetCollection(ctx context.Context, name string) (Collection, error)
	Close() error
}

// Collection persists vectors and supports nearest-neighbour search.
type Collection interface {
	Name() string
	Add(ctx context.Context, entries []domain.IndexEntry) error
	// Query returns at most n neighbours, nearest first.
	Query(ctx context.Context, embedding []float32, n int) ([]Neighbor, error)
	Count(ctx context.Context) (int, error)
}

// SquaredL2 returns the squared Euclidean distance between a and b over
// their common prefix.
func SquaredL2(a, b []float32) float64 {
	n := min(len(a), len(b))
	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
