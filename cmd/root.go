// Package cmd implements the knowledge-rag command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skepee/knowledge-rag/internal/app"
	"github.com/skepee/knowledge-rag/internal/config"
	"github.com/skepee/knowledge-rag/internal/log"
)

var (
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "knowledge-rag",
	Short: "Answer questions from Wikipedia with cited sources",
	Long: `knowledge-rag answers questions by searching Wikipedia, indexing the
matching articles into a local vector store and generating an answer with
numbered citations.

Articles are fetched and embedded once; repeat questions on the same topic
are served from the cache.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// newLogger builds the process logger from the global flags.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: logJSON})
}

// setupApp loads configuration and wires the application.
func setupApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, newLogger())
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, nil
}
