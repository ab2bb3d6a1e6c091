package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skepee/knowledge-rag/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from Wikipedia content",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question is empty")
	}

	answer, err := a.System.AnswerQuestion(ctx, question)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrNoSources):
			return errors.New("no Wikipedia articles found for this question")
		case errors.Is(err, rag.ErrNoInformation):
			return errors.New("no information found for this question")
		default:
			return fmt.Errorf("answering question: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Answer)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Sources:")
	for _, src := range answer.Sources {
		fmt.Fprintf(out, "  [%d] %s: %s\n", src.Index, src.Title, src.URL)
	}

	return nil
}
