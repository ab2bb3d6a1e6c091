// Package llm wraps text generation behind a small interface so the
// retrieval pipeline and the HTTP handlers can be tested without a live
// model.
package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Completer produces a completion for a system prompt and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client is a Completer backed by a genkit model.
type Client struct {
	g     *genkit.Genkit
	model string
}

// NewClient returns a Client that generates with the named model,
// e.g. "googleai/gemini-2.5-flash".
func NewClient(g *genkit.Genkit, model string) *Client {
	return &Client{g: g, model: model}
}

// Complete sends the prompts to the model and returns the response text
// verbatim.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(c.model),
		ai.WithPrompt(prompt),
	}
	if system != "" {
		opts = append(opts, ai.WithSystem(system))
	}

	response, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return response.Text(), nil
}
