package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the index from the corpus directory",
	Long: `Reads every .txt file of the corpus directory, extracts site, period and
source, splits the text into overlapping chunks and replaces the collection
with their embeddings. Files that cannot be read are skipped.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	corpus, err := app.Corpus()
	if err != nil {
		return err
	}

	cfg := app.Config
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔧 Configuration:")
	fmt.Fprintf(out, "   • Corpus: %s\n", cfg.Corpus.Path)
	fmt.Fprintf(out, "   • Chunk size: %d caractères\n", cfg.Chunker.Size)
	fmt.Fprintf(out, "   • Overlap: %d caractères\n", cfg.Chunker.Overlap)
	fmt.Fprintf(out, "   • Modèle: %s\n", app.Embedder.Name())
	fmt.Fprintln(out, "\n🚀 Indexation en cours...")

	report, err := app.Service.Reindex(cmd.Context(), corpus)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	for _, name := range report.Skipped {
		fmt.Fprintf(out, "   ⚠️  Ignoré: %s\n", name)
	}
	if report.Chunks == 0 {
		fmt.Fprintf(out, "\n❌ Aucun document à indexer dans: %s\n", cfg.Corpus.Path)
		return nil
	}
	fmt.Fprintf(out, "\n✅ Indexation terminée: %d documents, %d chunks, %d lots\n",
		report.Documents, report.Chunks, report.Batches)
	return nil
}
