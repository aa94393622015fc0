// Package retriever turns a question into the most relevant indexed chunks.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/embedding"
	"heritage-rag/internal/vectorstore"
)

// Defaults for Config fields left at zero.
const (
	DefaultTopK      = 5
	DefaultFetchK    = 10
	DefaultThreshold = 0.35
)

type Config struct {
	Collection string
	TopK       int
	// FetchK neighbours are pulled from the index before thresholding.
	FetchK    int
	Threshold float64
}

// Retriever embeds the question, queries the index and filters by similarity.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorstore.Index
	cfg      Config
}

func New(embedder embedding.Embedder, index vectorstore.Index, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.FetchK < cfg.TopK {
		cfg.FetchK = max(DefaultFetchK, cfg.TopK)
	}
	return &Retriever{embedder: embedder, index: index, cfg: cfg}
}

// Similarity converts a squared L2 distance between unit vectors to a score
// in [0, 1].
func Similarity(distance float64) float64 {
	return min(1, max(0, 1-distance/2))
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Search returns at most TopK results whose similarity reaches the
// threshold, best first. A missing collection yields no results and no error.
func (r *Retriever) Search(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	neighbors, err := r.neighbors(ctx, question)
	if err != nil {
		return nil, err
	}
	results := make([]domain.RetrievalResult, 0, len(neighbors))
	for _, nb := range neighbors {
		if Similarity(nb.Distance) < r.cfg.Threshold {
			continue
		}
		results = append(results, toResult(nb))
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if len(results) > r.cfg.TopK {
		results = results[:r.cfg.TopK]
	}
	return results, nil
}

// Inspect returns every fetched neighbour without thresholding, nearest
// first. It backs the search debugging command.
func (r *Retriever) Inspect(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	neighbors, err := r.neighbors(ctx, question)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RetrievalResult, len(neighbors))
	for i, nb := range neighbors {
		out[i] = toResult(nb)
	}
	return out, nil
}

func (r *Retriever) neighbors(ctx context.Context, question string) ([]vectorstore.Neighbor, error) {
	coll, err := r.index.GetCollection(ctx, r.cfg.Collection)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	neighbors, err := coll.Query(ctx, vec, r.cfg.FetchK)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, nil
	}
	if errors.Is(err, vectorstore.ErrDimensionMismatch) {
		return nil, fmt.Errorf("index built with another embedder than %s, reindex required: %w", r.embedder.Name(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	return neighbors, nil
}

func toResult(nb vectorstore.Neighbor) domain.RetrievalResult {
	return domain.RetrievalResult{
		Text:       nb.Document,
		Metadata:   nb.Metadata,
		Similarity: round3(Similarity(nb.Distance)),
		Distance:   round3(nb.Distance),
	}
}
