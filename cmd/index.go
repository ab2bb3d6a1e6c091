package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [titles...]",
	Short: "Index Wikipedia articles by title",
	Long: `Index fetches, chunks and embeds the given Wikipedia articles into the
knowledge store. Titles already present are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	report, err := a.Indexer.EnsureIndexed(ctx, args)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed:         %d\n", report.Indexed)
	fmt.Fprintf(out, "Already present: %d\n", report.AlreadyPresent)
	fmt.Fprintf(out, "Not found:       %d\n", report.NotFound)
	for _, failure := range report.Failed {
		fmt.Fprintf(out, "Failed: %s: %v\n", failure.Title, failure.Err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d titles failed", len(report.Failed))
	}
	return nil
}
