// Package cli implements the heritage command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"heritage-rag/internal/config"
	"heritage-rag/internal/logger"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "heritage",
	Short: "Ask questions about Tunisian archaeological sites",
	Long: `heritage answers questions about Tunisian archaeological sites from a
corpus of text documents. Documents are chunked, embedded and stored in a
vector index; answers are generated by a language model from the most
relevant chunks, in French.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML or TOML config file (default ./config.yaml, then ~/.config/heritage-rag/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openApp loads .env and the configuration, then wires the application.
func openApp() (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		var path string
		cfg, path, err = config.LoadDefault()
		logger.Debug("configuration: %s", path)
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return Build(cfg)
}
