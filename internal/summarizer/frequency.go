// Package summarizer extracts the most representative sentences of a chunk
// for display on source cards.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxSentences is used when Summarize is asked for zero sentences.
const DefaultMaxSentences = 2

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered).
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: defaultStopwords()}
}

// Summarize returns up to maxSentences sentences of text, chosen by token
// frequency and kept in their original order.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	freq := map[string]float64{}
	tokens := make([][]string, len(sentences))
	for i, sent := range sentences {
		tokens[i] = s.tokens(sent)
		for _, tok := range tokens[i] {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i := range sentences {
		score := 0.0
		for _, tok := range tokens[i] {
			score += freq[tok]
		}
		// long sentences would otherwise always win
		if l := float64(len(tokens[i])); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	maxSentences = min(maxSentences, len(scores))

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " ")
}

// Excerpt summarizes text and caps the result at maxRunes characters.
func (s *FrequencySummarizer) Excerpt(text string, maxSentences, maxRunes int) string {
	return Truncate(s.Summarize(text, maxSentences), maxRunes)
}

// Truncate flattens newlines and cuts text to n runes, appending "..." when
// anything was dropped.
func Truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

func (s *FrequencySummarizer) tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "into", "about", "than", "so", "such", "very", "can", "will", "just",
		"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "mais", "donc", "car", "ni", "que", "qui", "quoi", "dont", "où", "ce", "cet", "cette", "ces", "son", "sa", "ses", "leur", "leurs", "il", "elle", "ils", "elles", "on", "nous", "vous", "se", "sur", "sous", "dans", "par", "pour", "avec", "sans", "en", "au", "aux", "est", "sont", "été", "était", "fut", "a", "ont", "avait", "plus", "très", "aussi", "comme", "entre",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
