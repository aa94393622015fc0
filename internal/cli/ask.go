package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/summarizer"
)

var (
	askJSON    bool
	askMetrics bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the indexed corpus",
	Long: `Classifies the question, retrieves the most similar chunks and asks the
language model for an answer grounded in them. Sources are listed with a
relevance badge.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	askCmd.Flags().BoolVar(&askMetrics, "metrics", false, "show similarity metrics of the sources")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	question := strings.Join(args, " ")
	result := app.Service.Ask(cmd.Context(), question)

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out, result.Answer)
	if !result.HasSources {
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, color.New(color.Bold).Sprint("📚 Sources"))
	for i, src := range result.Sources {
		printCard(out, i+1, src, app.Summarizer, app.Config.Summarizer.MaxSentences)
	}
	if askMetrics {
		st := domain.Stats(result.Sources)
		fmt.Fprintln(out, color.New(color.Bold).Sprint("📊 Métriques"))
		fmt.Fprintf(out, "   📄 Sources: %d   📊 Moyenne: %.0f%%   ⭐ Maximum: %.0f%%\n",
			st.Count, st.Average*100, st.Max*100)
	}
	return nil
}

var (
	titleColor = color.New(color.Bold)
	metaColor  = color.New(color.Faint)
	badgeColor = map[domain.Relevance]*color.Color{
		domain.RelevanceHigh:   color.New(color.FgGreen, color.Bold),
		domain.RelevanceMedium: color.New(color.FgYellow, color.Bold),
		domain.RelevanceLow:    color.New(color.FgRed, color.Bold),
	}
)

func printCard(w io.Writer, n int, src domain.RetrievalResult, sum *summarizer.FrequencySummarizer, maxSentences int) {
	meta := src.Metadata
	title := meta.Filename
	if title == "" {
		title = "Document"
	}
	rel := domain.RelevanceOf(src.Similarity)
	fmt.Fprintf(w, "[%d] %s  %s\n", n, titleColor.Sprint(title),
		badgeColor[rel].Sprintf("%s • %.0f%%", rel.Label(), src.Similarity*100))
	fmt.Fprintln(w, metaColor.Sprintf("    🏛️ Site: %s", domain.Value(meta.Site, "N/A")))
	fmt.Fprintln(w, metaColor.Sprintf("    📅 Période: %s", domain.Value(meta.Period, "N/A")))
	fmt.Fprintln(w, metaColor.Sprintf("    📖 Référence: %s", domain.Value(meta.Source, "N/A")))
	if excerpt := sum.Excerpt(src.Text, maxSentences, 240); excerpt != "" {
		fmt.Fprintf(w, "    %s\n", excerpt)
	}
	fmt.Fprintln(w)
}
