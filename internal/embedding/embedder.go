package embedding

import (
	"context"
	"math"
)

// DefaultBatchSize is how many texts adapters send per upstream request.
const DefaultBatchSize = 16

// Embedder converts free text into a numeric vector representation.
// Queries and documents must be embedded by the same Embedder.
type Embedder interface {
	Name() string
	// Dimension reports the vector size, or 0 when it is not known until
	// the first call.
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// Batches splits texts into consecutive groups of at most size elements.
func Batches(texts []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		out = append(out, texts[start:end])
	}
	return out
}
