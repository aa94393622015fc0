// Package hashing provides an offline embedder based on feature hashing of
// word tokens. It needs no corpus preparation and no network, which makes
// it the embedder of choice for tests and air-gapped installs.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"heritage-rag/internal/embedding"
)

// DefaultDimension is used when NewEmbedder is given a non-positive size.
const DefaultDimension = 384

// Embedder maps token counts into a fixed number of hashed buckets with a
// sublinear term weight, then L2-normalizes the result.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder with the given vector size.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed embedding for the given text. Text with no
// usable tokens yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, e.dimension)
	tf := make(map[int]int)
	for _, tok := range e.tokenize(text) {
		idx, sign := e.bucket(tok)
		tf[idx] += sign
	}
	for idx, count := range tf {
		if count == 0 {
			continue
		}
		w := 1 + math.Log(math.Abs(float64(count)))
		if count < 0 {
			w = -w
		}
		vec[idx] = float32(w)
	}
	embedding.Normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// bucket hashes a token to an index and a sign; the sign keeps collisions
// from always adding up.
func (e *Embedder) bucket(tok string) (int, int) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tok))
	sum := h.Sum64()
	sign := 1
	if sum>>63 == 1 {
		sign = -1
	}
	return int(sum % uint64(e.dimension)), sign
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		// l'amphithéâtre -> amphithéâtre
		if i := strings.IndexAny(t, "'’"); i >= 0 && i <= 2 {
			_, size := utf8.DecodeRuneInString(t[i:])
			t = t[i+size:]
		}
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those", "from", "into", "about",
		"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "en", "au", "aux", "ce", "cet", "cette", "ces", "est", "sont", "fut", "été", "par", "pour", "dans", "sur", "avec", "qui", "que", "quoi", "dont", "où", "se", "sa", "son", "ses", "il", "elle", "ils", "elles", "on", "ne", "pas", "plus", "moi", "parle",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
