package config

import "fmt"

// Validate checks the configuration for use by the RAG pipeline.
// It returns the first problem found, wrapped around a sentinel error.
//
// The API key check is separate (RequireAPIKey) because read-only
// commands such as `stats` work without one.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}

	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, c.EmbeddingDimension)
	}

	if c.TopK < 1 || c.TopK > 100 {
		return fmt.Errorf("%w: must be in [1, 100], got %d", ErrInvalidTopK, c.TopK)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, c.BatchSize)
	}

	switch c.StoreBackend {
	case BackendChromem:
		// CachePath may be relative; the store creates it on first use.
	case BackendPostgres:
		if c.PostgresURL == "" {
			return ErrMissingPostgresURL
		}
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidBackend, c.StoreBackend, BackendChromem, BackendPostgres)
	}

	return nil
}

// RequireAPIKey reports whether a model API key is present. Commands that
// call the embedding or generation APIs fail fast on this at startup.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}
