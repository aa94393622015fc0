package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/summarizer"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6366f1")).
			Padding(0, 1)
	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cardMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	excerptStyle   = lipgloss.NewStyle().Italic(true)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1"))
)

// Badge renders the relevance label of a similarity as a coloured pill,
// e.g. "Très pertinent • 82%".
func Badge(similarity float64) string {
	rel := domain.RelevanceOf(similarity)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(rel.Color())).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s • %s", rel.Label(), percent(similarity)))
}

// Card renders one source with its attribution, badge and an excerpt.
func Card(src domain.RetrievalResult, sum *summarizer.FrequencySummarizer, maxSentences, width int) string {
	meta := src.Metadata
	title := meta.Filename
	if title == "" {
		title = "Document"
	}
	lines := []string{
		cardTitleStyle.Render(title),
		cardMetaStyle.Render("🏛️ Site: " + domain.Value(meta.Site, "N/A")),
		cardMetaStyle.Render("📅 Période: " + domain.Value(meta.Period, "N/A")),
		cardMetaStyle.Render("📖 Référence: " + domain.Value(meta.Source, "N/A")),
		Badge(src.Similarity),
	}
	if sum != nil {
		excerpt := sum.Excerpt(src.Text, maxSentences, 240)
		if excerpt != "" {
			lines = append(lines, excerptStyle.Render(excerpt))
		}
	}
	style := cardStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// Metrics renders count, mean and best similarity of a source set.
func Metrics(sources []domain.RetrievalResult) string {
	st := domain.Stats(sources)
	return fmt.Sprintf("📄 Sources: %d   📊 Moyenne: %s   ⭐ Maximum: %s",
		st.Count, percent(st.Average), percent(st.Max))
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
