package knowledge

import (
	"context"
	"errors"

	chromem "github.com/philippgille/chromem-go"

	"github.com/skepee/knowledge-rag/internal/embed"
)

// NewEmbeddingFunc bridges the pipeline's Embedder to chromem-go's
// EmbeddingFunc. chromem normalizes vectors itself, so no normalization
// happens here. A nil embedder yields a func that always errors; store
// operations that never embed (Stats, Contains) still work.
func NewEmbeddingFunc(embedder embed.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if embedder == nil {
			return nil, errors.New("no embedder configured")
		}
		return embedder.Embed(ctx, text)
	}
}
