package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// StructuredResult holds the outcome of a structured generation. When the
// model's output could not be parsed into T, Parsed is nil and Raw carries
// the model text so callers can fall back to their own handling.
type StructuredResult[T any] struct {
	Parsed *T
	Raw    string
}

// GenerateStructured asks the model for output conforming to T's JSON
// schema. A generation failure is returned as an error; a parse failure is
// not, it yields a result with only Raw set.
func GenerateStructured[T any](ctx context.Context, g *genkit.Genkit, model, system, prompt string) (StructuredResult[T], error) {
	var out T
	opts := []ai.GenerateOption{
		ai.WithModelName(model),
		ai.WithPrompt(prompt),
		ai.WithOutputType(out),
	}
	if system != "" {
		opts = append(opts, ai.WithSystem(system))
	}

	response, err := genkit.Generate(ctx, g, opts...)
	if err != nil {
		return StructuredResult[T]{}, fmt.Errorf("generation failed: %w", err)
	}

	result := StructuredResult[T]{Raw: response.Text()}
	if err := response.Output(&out); err != nil {
		return result, nil
	}
	result.Parsed = &out
	return result, nil
}
