package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/summarizer"
)

// searchPreviews is how many leading results get an excerpt line.
const searchPreviews = 3

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Show raw retrieval results for a question",
	Long: `Lists every neighbour fetched from the index for the question, with its
similarity, distance and site, before any threshold is applied. Useful to
tune the similarity threshold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	question := strings.Join(args, " ")
	results, err := app.Service.Inspect(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🔍 DEBUG RECHERCHE: '%s'\n", question)
	fmt.Fprintln(out, strings.Repeat("=", 70))
	if len(results) == 0 {
		fmt.Fprintln(out, "Aucun résultat")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. Similarité: %.3f | Distance: %.3f | Site: %s\n",
			i+1, r.Similarity, r.Distance, domain.Value(r.Metadata.Site, "N/A"))
		if i < searchPreviews {
			fmt.Fprintf(out, "   Extrait: %s\n", summarizer.Truncate(r.Text, 150))
		}
	}
	fmt.Fprintf(out, "\nSeuil: %.2f\n", app.Config.Retrieval.Threshold)
	return nil
}
