package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_PicksFrequentSentencesInOrder(t *testing.T) {
	text := "Le théâtre de Dougga est remarquable. Il pleuvait ce jour-là. " +
		"Le théâtre accueillait trois mille spectateurs. Dougga domine la vallée."

	got := NewFrequencySummarizer().Summarize(text, 2)

	assert.NotContains(t, got, "pleuvait")
	assert.Equal(t, 2, strings.Count(got, "."))
	assert.Less(t, strings.Index(got, "remarquable"), strings.Index(got, "spectateurs"))
}

func TestSummarize_Defaults(t *testing.T) {
	s := NewFrequencySummarizer()
	assert.Equal(t, "Pas de ponctuation finale", s.Summarize("  Pas de ponctuation finale ", 3))

	text := "Carthage. Carthage punique. Carthage romaine. Carthage byzantine."
	assert.Equal(t, DefaultMaxSentences, strings.Count(s.Summarize(text, 0), "Carthage"))
	assert.Equal(t, 4, strings.Count(s.Summarize(text, 10), "Carthage"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "El Jem", 10, "El Jem"},
		{"exact", "Dougga", 6, "Dougga"},
		{"cut counts runes", "Kerkouane été", 10, "Kerkouane ..."},
		{"newlines flattened", "Site: Dougga\nPériode: romaine", 0, "Site: Dougga Période: romaine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestExcerpt(t *testing.T) {
	text := strings.Repeat("Le forum de Sbeitla garde ses trois temples capitolins. ", 3)
	got := NewFrequencySummarizer().Excerpt(text, 1, 20)
	assert.Equal(t, "Le forum de Sbeitla ...", got)
}
