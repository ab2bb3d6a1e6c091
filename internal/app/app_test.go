package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/skepee/knowledge-rag/internal/config"
	"github.com/skepee/knowledge-rag/internal/log"
)

func storeConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ModelName:          "googleai/gemini-2.5-flash",
		EmbedderModel:      "gemini-embedding-001",
		EmbeddingDimension: 4,
		WikiLanguage:       "en",
		SearchMaxResults:   3,
		ChunkSize:          500,
		ChunkOverlap:       50,
		BatchSize:          20,
		TopK:               5,
		StoreBackend:       config.BackendChromem,
		CachePath:          filepath.Join(t.TempDir(), "cache"),
	}
}

// Read-only commands open the store without an API key.
func TestSetupStoreWithoutAPIKey(t *testing.T) {
	ctx := context.Background()
	cfg := storeConfig(t)
	if cfg.APIKey != "" {
		t.Fatal("test config must not carry an API key")
	}

	store, err := SetupStore(ctx, cfg, log.NewNop())
	if err != nil {
		t.Fatalf("SetupStore() = %v", err)
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() = %v", err)
	}
	if stats.TotalChunks != 0 || stats.TotalTitles != 0 {
		t.Errorf("Stats() = %+v, want empty", stats)
	}
}

func TestSetupStoreInvalidConfig(t *testing.T) {
	cfg := storeConfig(t)
	cfg.StoreBackend = config.BackendPostgres
	cfg.PostgresURL = ""

	_, err := SetupStore(context.Background(), cfg, log.NewNop())
	if !errors.Is(err, config.ErrMissingPostgresURL) {
		t.Fatalf("SetupStore() = %v, want ErrMissingPostgresURL", err)
	}
}
