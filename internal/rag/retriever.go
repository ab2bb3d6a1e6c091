package rag

import (
	"context"
	"fmt"

	"github.com/skepee/knowledge-rag/internal/embed"
	"github.com/skepee/knowledge-rag/internal/knowledge"
)

// Retriever finds the chunks most similar to a question.
type Retriever struct {
	embedder embed.Embedder
	store    knowledge.Store
	topK     int
}

func NewRetriever(embedder embed.Embedder, store knowledge.Store, topK int) *Retriever {
	return &Retriever{embedder: embedder, store: store, topK: topK}
}

// Retrieve embeds the question and returns up to topK nearest chunks,
// most similar first. An empty store yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]knowledge.Retrieved, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := r.store.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}
	return results, nil
}
