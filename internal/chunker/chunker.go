package chunker

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"heritage-rag/internal/domain"
)

const (
	DefaultChunkSize = 600
	DefaultOverlap   = 150
	DefaultMinLength = 100
)

// boundaries are tried in order; the first one present in the window wins.
var boundaries = [][]rune{
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune("\n\n"),
	[]rune("\n"),
}

// CharChunker splits text into overlapping character windows whose right edge
// is pulled back to the nearest sentence boundary when one exists.
type CharChunker struct {
	chunkSize int
	overlap   int
	minLength int
}

func NewCharChunker(chunkSize, overlap, minLength int) *CharChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if minLength < 0 {
		minLength = 0
	}
	return &CharChunker{chunkSize: chunkSize, overlap: overlap, minLength: minLength}
}

// Chunk returns every chunk of text, each inheriting meta.
func (c *CharChunker) Chunk(text string, meta domain.Metadata) []domain.Chunk {
	return slices.Collect(c.Chunks(text, meta))
}

// Chunks lazily yields the chunks of text in document order.
func (c *CharChunker) Chunks(text string, meta domain.Metadata) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		runes := []rune(text)
		n := len(runes)
		step := c.chunkSize - c.overlap
		seq := 0
		for start := 0; start < n; {
			end := min(start+c.chunkSize, n)
			if end < n {
				end = boundaryEnd(runes, start, end)
			}

			piece := strings.TrimSpace(string(runes[start:end]))
			if piece != "" && utf8.RuneCountInString(piece) >= c.minLength {
				m := meta
				m.ChunkID = seq
				m.StartChar = start
				m.EndChar = end
				if !yield(domain.Chunk{Text: piece, Metadata: m}) {
					return
				}
				seq++
			}

			next := start + step
			if next >= end || next <= start {
				next = end
			}
			start = next
		}
	}
}

// boundaryEnd returns the position just after the last occurrence, within
// runes[start:end], of the highest priority boundary present there. When no
// boundary is found the fixed cut at end is kept.
func boundaryEnd(runes []rune, start, end int) int {
	for _, b := range boundaries {
		if pos := lastIndex(runes[start:end], b); pos >= 0 {
			return start + pos + len(b)
		}
	}
	return end
}

func lastIndex(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if slices.Equal(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}
