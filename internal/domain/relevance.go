package domain

// Relevance buckets a similarity score for display.
type Relevance int

const (
	RelevanceLow Relevance = iota
	RelevanceMedium
	RelevanceHigh
)

// RelevanceOf maps a similarity to its display bucket.
func RelevanceOf(similarity float64) Relevance {
	switch {
	case similarity >= 0.70:
		return RelevanceHigh
	case similarity >= 0.50:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// Label is the user-facing badge text.
func (r Relevance) Label() string {
	switch r {
	case RelevanceHigh:
		return "Très pertinent"
	case RelevanceMedium:
		return "Pertinent"
	default:
		return "Peu pertinent"
	}
}

// Color is the badge colour as a hex string.
func (r Relevance) Color() string {
	switch r {
	case RelevanceHigh:
		return "#10b981"
	case RelevanceMedium:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// SourceStats summarises the similarities of a result set.
type SourceStats struct {
	Count   int
	Average float64
	Max     float64
}

// Stats computes count, mean and maximum similarity over sources.
func Stats(sources []RetrievalResult) SourceStats {
	if len(sources) == 0 {
		return SourceStats{}
	}
	st := SourceStats{Count: len(sources)}
	sum := 0.0
	for i, s := range sources {
		sum += s.Similarity
		if i == 0 || s.Similarity > st.Max {
			st.Max = s.Similarity
		}
	}
	st.Average = sum / float64(len(sources))
	return st
}
