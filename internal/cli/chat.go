package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"heritage-rag/internal/logger"
	"heritage-rag/internal/tui"
)

var (
	chatReindex   bool
	chatExportDir string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Long: `Opens a terminal chat over the indexed corpus. Answers are shown with
their source cards; conversations can be saved as JSON.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatReindex, "reindex", false, "rebuild the index from the corpus before starting")
	chatCmd.Flags().StringVar(&chatExportDir, "export-dir", ".", "directory for saved conversations")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if chatReindex {
		corpus, err := app.Corpus()
		if err != nil {
			return err
		}
		if _, err := app.Service.Reindex(ctx, corpus); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
	}
	if st, err := app.Service.Status(ctx); err == nil && !st.Indexed {
		logger.Warn("index vide, lancez 'heritage ingest' ou 'heritage chat --reindex'")
	}

	m := tui.New(ctx, app.Service, tui.Options{
		Model:        app.Generator.Model(),
		ExportDir:    chatExportDir,
		Summarizer:   app.Summarizer,
		MaxSentences: app.Config.Summarizer.MaxSentences,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
