package knowledge

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/skepee/knowledge-rag/internal/embed"
	"github.com/skepee/knowledge-rag/internal/log"
)

// Collection names inside the persistent database.
const (
	chunksCollection   = "wikipedia_knowledge"
	articlesCollection = "wikipedia_articles"
)

// ChromemStore is the embedded Store backend: a chromem-go database
// persisted under a configured path, created on first use. One document
// per chunk lives in the chunks collection; one sentinel document per
// indexed title lives in the articles collection and doubles as the
// presence probe and the distinct-title counter.
//
// Safe for concurrent use. Same-title races are serialized by a per-title
// lock so a title is indexed at most once.
type ChromemStore struct {
	chunks   *chromem.Collection
	articles *chromem.Collection
	locks    titleLocks
	logger   log.Logger
}

// NewChromem opens (or creates) the persistent database at path.
// The embedder backs chromem's EmbeddingFunc; it is only consulted for
// documents added without a precomputed vector, which this store never
// does on the write path.
func NewChromem(path string, embedder embed.Embedder, logger log.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening chromem database at %q: %w", path, err)
	}

	embedFunc := NewEmbeddingFunc(embedder)

	chunks, err := db.GetOrCreateCollection(chunksCollection,
		map[string]string{"description": "Wikipedia articles for RAG"}, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", chunksCollection, err)
	}
	articles, err := db.GetOrCreateCollection(articlesCollection, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", articlesCollection, err)
	}

	logger.Info("knowledge store opened",
		"backend", "chromem",
		"path", path,
		"chunks", chunks.Count(),
		"articles", articles.Count())

	return &ChromemStore{
		chunks:   chunks,
		articles: articles,
		logger:   logger,
	}, nil
}

// Contains reports whether the title's sentinel document exists.
func (s *ChromemStore) Contains(ctx context.Context, title string) (bool, error) {
	_, err := s.articles.GetByID(ctx, sentinelID(title))
	return err == nil, nil
}

// UpsertIfAbsent stores the title's chunk records unless the title is
// already present. Chunks are written first and the sentinel last, so a
// present sentinel implies all chunks were written; a crash in between
// leaves orphan chunks that the next indexing of the same title simply
// overwrites (same deterministic ids).
func (s *ChromemStore) UpsertIfAbsent(ctx context.Context, title string, records []Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}

	lock := s.locks.forTitle(title)
	lock.Lock()
	defer lock.Unlock()

	if present, _ := s.Contains(ctx, title); present {
		s.logger.Debug("article already cached", "title", title)
		return false, nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Text,
			Embedding: rec.Embedding,
			Metadata: map[string]string{
				"source":   "wikipedia",
				"title":    rec.Title,
				"url":      rec.URL,
				"chunk_id": strconv.Itoa(rec.Ordinal),
			},
		}
	}

	if err := s.chunks.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return false, fmt.Errorf("storing chunks for %q: %w", title, err)
	}

	sentinel := chromem.Document{
		ID:        sentinelID(title),
		Content:   title,
		Embedding: records[0].Embedding,
		Metadata: map[string]string{
			"title":  title,
			"url":    records[0].URL,
			"chunks": strconv.Itoa(len(records)),
		},
	}
	if err := s.articles.AddDocument(ctx, sentinel); err != nil {
		return false, fmt.Errorf("storing sentinel for %q: %w", title, err)
	}

	s.logger.Info("article indexed", "title", title, "chunks", len(records))
	return true, nil
}

// Query returns the topK nearest chunks by cosine similarity.
func (s *ChromemStore) Query(ctx context.Context, embedding []float32, topK int) ([]Retrieved, error) {
	if topK <= 0 {
		return nil, nil
	}

	// chromem rejects queries asking for more results than it holds.
	if count := s.chunks.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.chunks.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	retrieved := make([]Retrieved, len(results))
	for i, res := range results {
		retrieved[i] = Retrieved{
			Text:       res.Content,
			Title:      res.Metadata["title"],
			URL:        res.Metadata["url"],
			Similarity: res.Similarity,
		}
	}
	return retrieved, nil
}

// Stats returns chunk and article counts.
func (s *ChromemStore) Stats(context.Context) (Stats, error) {
	return Stats{
		TotalChunks: s.chunks.Count(),
		TotalTitles: s.articles.Count(),
	}, nil
}

// Close is a no-op: chromem persists on every write and holds no
// connection to release.
func (*ChromemStore) Close() error {
	return nil
}

// titleLocks hands out one mutex per title.
type titleLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (t *titleLocks) forTitle(title string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.m == nil {
		t.m = make(map[string]*sync.Mutex)
	}
	if _, ok := t.m[title]; !ok {
		t.m[title] = &sync.Mutex{}
	}
	return t.m[title]
}
