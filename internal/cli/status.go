package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"heritage-rag/internal/config"
)

// modelLister is implemented by generators that can enumerate their models.
type modelLister interface {
	Models(ctx context.Context) ([]string, error)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index size and language model availability",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	st, err := app.Service.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collection: %s (%s)\n", st.Collection, app.Config.VectorStore.Type)
	if st.Indexed {
		fmt.Fprintf(out, "Index: ✅ %d chunks\n", st.Chunks)
	} else {
		fmt.Fprintln(out, "Index: ❌ absent, lancez 'heritage ingest'")
	}
	fmt.Fprintf(out, "Embeddings: %s\n", app.Embedder.Name())

	if !st.GeneratorUp {
		fmt.Fprintf(out, "Générateur: ⚠️  %s non accessible: %s\n", st.Model, st.GeneratorErr)
		if app.Config.Generator.Type == config.GeneratorOllama {
			fmt.Fprintln(out, "   Démarrez-le avec: ollama serve")
		}
		return nil
	}
	fmt.Fprintf(out, "Générateur: ✅ %s\n", st.Model)
	if lister, ok := app.Generator.(modelLister); ok {
		if models, err := lister.Models(ctx); err == nil {
			fmt.Fprintf(out, "Modèles: %s\n", strings.Join(models, ", "))
		}
	}
	return nil
}
