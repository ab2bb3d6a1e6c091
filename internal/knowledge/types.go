// Package knowledge persists embedded article chunks and serves
// nearest-neighbor queries over them.
//
// Two backends implement Store: an embedded chromem-go database persisted
// at a configured path (the default), and PostgreSQL with pgvector for
// server deployments. Both key records by chunk id and de-duplicate whole
// articles by title.
package knowledge

import (
	"context"
	"fmt"
)

// Record is one chunk ready for persistence: the text, its provenance,
// and its embedding.
type Record struct {
	ID        string
	Text      string
	Title     string
	URL       string
	Ordinal   int
	Embedding []float32
}

// Retrieved is the read-only projection returned by similarity queries,
// ranked by descending similarity (ascending distance).
type Retrieved struct {
	Text       string
	Title      string
	URL        string
	Similarity float32
}

// Stats summarizes store contents.
type Stats struct {
	TotalChunks int `json:"total_chunks"`
	TotalTitles int `json:"total_articles"`
}

// Store is the persistence boundary of the pipeline.
//
// The presence check behind UpsertIfAbsent and Contains is advisory
// de-duplication, not a freshness guarantee: an article edited upstream
// after indexing is never re-fetched. There is deliberately no
// invalidation policy.
type Store interface {
	// Contains reports whether chunks for the title are already stored.
	Contains(ctx context.Context, title string) (bool, error)

	// UpsertIfAbsent stores all records for one title. It is a no-op
	// when records for the title already exist (idempotent) and must be
	// safe under concurrent calls: at most one caller wins per title.
	// The boolean reports whether an insert happened.
	UpsertIfAbsent(ctx context.Context, title string, records []Record) (bool, error)

	// Query returns up to topK records nearest to the embedding, best
	// match first. Fewer records are returned when the store holds
	// fewer.
	Query(ctx context.Context, embedding []float32, topK int) ([]Retrieved, error)

	// Stats returns chunk and distinct-title counts.
	Stats(ctx context.Context) (Stats, error)

	// Close releases backend resources.
	Close() error
}

// ChunkID derives the deterministic record id for a title's ordinal chunk.
func ChunkID(title string, ordinal int) string {
	return fmt.Sprintf("%s_chunk_%d", title, ordinal)
}

// sentinelID is the per-title marker written after a title's chunks.
// Its presence is the "already indexed" probe.
func sentinelID(title string) string {
	return "article_" + title
}
