// Package app wires configuration, the model clients, the knowledge store
// and the pipeline into a runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skepee/knowledge-rag/db"
	"github.com/skepee/knowledge-rag/internal/chunk"
	"github.com/skepee/knowledge-rag/internal/config"
	"github.com/skepee/knowledge-rag/internal/course"
	"github.com/skepee/knowledge-rag/internal/embed"
	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/llm"
	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/rag"
	"github.com/skepee/knowledge-rag/internal/wiki"
)

// App holds the constructed application graph.
type App struct {
	Config  *config.Config
	Logger  log.Logger
	System  *rag.System
	Indexer *rag.Indexer
	Courses *course.Generator
	Store   knowledge.Store
}

// Setup builds the application from configuration. The returned App must
// be Closed when done.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, fmt.Errorf("failed to initialize genkit")
	}

	embedder := embed.New(
		googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel),
		embed.Config{
			Dimension:         cfg.EmbeddingDimension,
			BatchSize:         cfg.BatchSize,
			RequestsPerSecond: cfg.EmbedRequestsPerSecond,
		},
		logger,
	)

	store, err := openStore(ctx, cfg, embedder, logger)
	if err != nil {
		return nil, err
	}

	splitter, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		store.Close()
		return nil, err
	}

	wikiClient := wiki.NewClient(wiki.Config{
		Language:  cfg.WikiLanguage,
		UserAgent: cfg.WikiUserAgent,
	}, logger)

	completer := llm.NewClient(g, cfg.ModelName)

	indexer := rag.NewIndexer(wikiClient, splitter, embedder, store, logger)

	system := rag.NewSystem(
		wikiClient,
		indexer,
		rag.NewRetriever(embedder, store, cfg.TopK),
		rag.NewSynthesizer(completer),
		store,
		cfg.SearchMaxResults,
		logger,
	)

	courses := course.NewGenerator(
		course.NewPlanner(g, cfg.ModelName),
		completer,
		course.NewFinder(wikiClient, logger),
		course.DefaultMaxModules,
		logger,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		System:  system,
		Indexer: indexer,
		Courses: courses,
		Store:   store,
	}, nil
}

// SetupStore opens only the knowledge store, without the model clients.
// Read-only commands such as `stats` use this path; it needs no API key.
// The returned store must be Closed when done.
func SetupStore(ctx context.Context, cfg *config.Config, logger log.Logger) (knowledge.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return openStore(ctx, cfg, nil, logger)
}

// openStore constructs the configured knowledge store backend. For the
// postgres backend it also runs migrations; the pool is owned by the
// store and released by its Close.
func openStore(ctx context.Context, cfg *config.Config, embedder embed.Embedder, logger log.Logger) (knowledge.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendChromem:
		store, err := knowledge.NewChromem(cfg.CachePath, embedder, logger)
		if err != nil {
			return nil, fmt.Errorf("opening chromem store: %w", err)
		}
		return store, nil

	case config.BackendPostgres:
		if err := db.Migrate(cfg.PostgresURL, logger); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("parsing postgres URL: %w", err)
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 2
		poolCfg.MaxConnLifetime = 30 * time.Minute
		poolCfg.MaxConnIdleTime = 5 * time.Minute

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("creating connection pool: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("pinging database: %w", err)
		}

		return knowledge.NewPostgres(pool, logger), nil

	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidBackend, cfg.StoreBackend)
	}
}

// Close releases the knowledge store and any backing connections.
func (a *App) Close() error {
	return a.Store.Close()
}
