// Package embed converts text into fixed-dimension vectors.
//
// Client wraps a Genkit embedder with the batching policy the pipeline
// needs: requests are grouped, a failed group degrades to per-item calls,
// and a failed item degrades to a zero vector so one bad chunk never
// loses the rest of the batch. Calls are paced through a shared rate
// limiter to stay inside external quotas.
package embed

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/skepee/knowledge-rag/internal/log"
)

// Embedder is the narrow embedding interface consumed by the pipeline.
type Embedder interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	// The result always has len(texts) entries; vectors that could not
	// be computed are zero vectors.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DefaultBatchSize is the number of texts sent per provider call.
const DefaultBatchSize = 20

// Config configures a Client.
type Config struct {
	// Dimension is the expected vector width. Vectors of any other
	// width are rejected; zero-vector placeholders use this width.
	Dimension int

	// BatchSize is the group size for EmbedBatch. Defaults to
	// DefaultBatchSize.
	BatchSize int

	// RequestsPerSecond paces provider calls. Zero disables pacing
	// (for providers without rate limits, and for tests).
	RequestsPerSecond float64
}

// Client implements Embedder on top of a Genkit ai.Embedder.
// Safe for concurrent use.
type Client struct {
	embedder  ai.Embedder
	dimension int
	batchSize int
	limiter   *rate.Limiter
	logger    log.Logger
}

// New creates a Client.
func New(embedder ai.Embedder, cfg Config, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		embedder:  embedder,
		dimension: cfg.Dimension,
		batchSize: batchSize,
		limiter:   limiter,
		logger:    logger,
	}
}

// Embed returns the vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in groups of the configured batch size. A group
// whose provider call fails degrades to per-item calls; an item that still
// fails contributes a zero vector. Output order matches input order and
// the result always has len(texts) entries. Only context cancellation
// aborts the whole batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		group := texts[start:end]

		groupVectors, err := c.request(ctx, group)
		if err == nil {
			vectors = append(vectors, groupVectors...)
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("batch embedding failed, retrying per item",
			"batch_start", start,
			"batch_len", len(group),
			"error", err)

		for _, text := range group {
			itemVectors, err := c.request(ctx, []string{text})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("embedding failed, substituting zero vector", "error", err)
				vectors = append(vectors, make([]float32, c.dimension))
				continue
			}
			vectors = append(vectors, itemVectors[0])
		}
	}

	return vectors, nil
}

// request issues one provider call for the given texts, honoring pacing
// and validating the response shape.
func (c *Client) request(ctx context.Context, texts []string) ([][]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	input := make([]*ai.Document, len(texts))
	for i, t := range texts {
		input[i] = ai.DocumentFromText(t, nil)
	}

	req := &ai.EmbedRequest{Input: input}
	if c.dimension > 0 {
		// Pin the provider's output width to the store's vector width.
		// Gemini embedders truncate to the requested dimensionality.
		dim := int32(c.dimension)
		req.Options = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	resp, err := c.embedder.Embed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at position %d", i)
		}
		if c.dimension > 0 && len(emb.Embedding) != c.dimension {
			return nil, fmt.Errorf("embedding dimension %d, want %d", len(emb.Embedding), c.dimension)
		}
		vectors[i] = emb.Embedding
	}
	return vectors, nil
}
