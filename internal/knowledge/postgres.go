package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/skepee/knowledge-rag/internal/log"
)

// PostgresStore is the server Store backend: chunks live in a pgvector
// table (schema in db/migrations). Same-title races are resolved by the
// database itself: the insert runs in one transaction with ON CONFLICT
// DO NOTHING on the primary key, so concurrent indexers of the same
// title cannot duplicate chunks.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// NewPostgres creates a PostgresStore over an existing pool. Migrations
// are the caller's responsibility (db.Migrate), run before the pool is
// handed over.
func NewPostgres(pool *pgxpool.Pool, logger log.Logger) *PostgresStore {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

// Contains reports whether any chunk for the title exists.
func (s *PostgresStore) Contains(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chunks WHERE title = $1)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("presence probe for %q: %w", title, err)
	}
	return exists, nil
}

// UpsertIfAbsent inserts all records for the title in one transaction.
// Records for an already-present title are left untouched.
func (s *PostgresStore) UpsertIfAbsent(ctx context.Context, title string, records []Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "title", title, "error", rbErr)
		}
	}()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chunks WHERE title = $1)`, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("presence probe for %q: %w", title, err)
	}
	if exists {
		s.logger.Debug("article already cached", "title", title)
		return false, nil
	}

	for _, rec := range records {
		vec := pgvector.NewVector(rec.Embedding)
		if _, err := tx.Exec(ctx,
			`INSERT INTO chunks (id, title, url, ordinal, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ID, rec.Title, rec.URL, rec.Ordinal, rec.Text, vec); err != nil {
			return false, fmt.Errorf("inserting chunk %q: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing chunks for %q: %w", title, err)
	}

	s.logger.Info("article indexed", "title", title, "chunks", len(records))
	return true, nil
}

// Query returns the topK nearest chunks by cosine distance.
func (s *PostgresStore) Query(ctx context.Context, embedding []float32, topK int) ([]Retrieved, error) {
	if topK <= 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx,
		`SELECT content, title, url, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var retrieved []Retrieved
	for rows.Next() {
		var r Retrieved
		if err := rows.Scan(&r.Text, &r.Title, &r.URL, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		retrieved = append(retrieved, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading result rows: %w", err)
	}
	return retrieved, nil
}

// Stats returns chunk and distinct-title counts.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.pool.QueryRow(ctx,
		`SELECT count(*), count(DISTINCT title) FROM chunks`).
		Scan(&stats.TotalChunks, &stats.TotalTitles)
	if err != nil {
		return Stats{}, fmt.Errorf("counting chunks: %w", err)
	}
	return stats, nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
