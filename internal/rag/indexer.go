// Package rag ties Wikipedia retrieval, chunking, embedding, storage and
// answer generation together into the question answering pipeline.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/skepee/knowledge-rag/internal/embed"
	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/log"
	"github.com/skepee/knowledge-rag/internal/wiki"
)

// Fetcher retrieves the full content of a Wikipedia article by title.
type Fetcher interface {
	Fetch(ctx context.Context, title string) (*wiki.Article, error)
}

// Splitter cuts article text into overlapping chunks.
type Splitter interface {
	Split(text string) []string
}

// TitleError records a title whose indexing failed.
type TitleError struct {
	Title string
	Err   error
}

// IndexReport summarises one EnsureIndexed run.
type IndexReport struct {
	Indexed        int
	AlreadyPresent int
	NotFound       int
	Failed         []TitleError
}

// Indexer makes articles available in the knowledge store. Titles already
// present are skipped without fetching or embedding.
type Indexer struct {
	fetcher  Fetcher
	splitter Splitter
	embedder embed.Embedder
	store    knowledge.Store
	logger   log.Logger
}

func NewIndexer(fetcher Fetcher, splitter Splitter, embedder embed.Embedder, store knowledge.Store, logger log.Logger) *Indexer {
	return &Indexer{
		fetcher:  fetcher,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// EnsureIndexed fetches, chunks, embeds and stores each title that is not
// already in the store. Missing articles and per-title failures do not
// abort the run; they are reported and the remaining titles proceed. The
// returned error is non-nil only when the context is cancelled.
func (ix *Indexer) EnsureIndexed(ctx context.Context, titles []string) (*IndexReport, error) {
	report := &IndexReport{}

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		present, err := ix.store.Contains(ctx, title)
		if err != nil {
			report.Failed = append(report.Failed, TitleError{Title: title, Err: err})
			ix.logger.Warn("presence check failed", "title", title, "error", err)
			continue
		}
		if present {
			report.AlreadyPresent++
			ix.logger.Debug("article already indexed", "title", title)
			continue
		}

		if err := ix.indexOne(ctx, title); err != nil {
			if errors.Is(err, wiki.ErrNotFound) {
				report.NotFound++
				ix.logger.Debug("article not found", "title", title)
				continue
			}
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed = append(report.Failed, TitleError{Title: title, Err: err})
			ix.logger.Warn("indexing failed", "title", title, "error", err)
			continue
		}
		report.Indexed++
	}

	return report, nil
}

func (ix *Indexer) indexOne(ctx context.Context, title string) error {
	article, err := ix.fetcher.Fetch(ctx, title)
	if err != nil {
		return err
	}

	chunks := ix.splitter.Split(article.Content)
	if len(chunks) == 0 {
		ix.logger.Debug("article produced no chunks", "title", article.Title)
		return nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding %q: %w", article.Title, err)
	}

	records := make([]knowledge.Record, len(chunks))
	for i, text := range chunks {
		records[i] = knowledge.Record{
			ID:        knowledge.ChunkID(article.Title, i),
			Text:      text,
			Title:     article.Title,
			URL:       article.URL,
			Ordinal:   i,
			Embedding: vectors[i],
		}
	}

	inserted, err := ix.store.UpsertIfAbsent(ctx, article.Title, records)
	if err != nil {
		return fmt.Errorf("storing %q: %w", article.Title, err)
	}
	if inserted {
		ix.logger.Info("indexed article", "title", article.Title, "chunks", len(records))
	}
	return nil
}
