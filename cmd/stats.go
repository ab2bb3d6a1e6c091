package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skepee/knowledge-rag/internal/app"
	"github.com/skepee/knowledge-rag/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// runStats reads counts straight from the store. It opens the store only,
// so no API key is needed.
func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()
	store, err := app.SetupStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total chunks:   %d\n", stats.TotalChunks)
	fmt.Fprintf(out, "Total articles: %d\n", stats.TotalTitles)
	return nil
}
