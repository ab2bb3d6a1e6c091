package rag

import (
	"context"
	"errors"

	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/log"
)

var (
	// ErrNoSources means the Wikipedia search returned no article titles.
	ErrNoSources = errors.New("no wikipedia articles found")
	// ErrNoInformation means no chunks were retrieved for the question.
	ErrNoInformation = errors.New("no information found")
)

// Searcher finds candidate Wikipedia article titles for a question.
type Searcher interface {
	Search(ctx context.Context, question string, maxResults int) []string
}

// Answer is the result of a full question answering run.
type Answer struct {
	Answer        string   `json:"answer"`
	Sources       []Source `json:"sources"`
	ArticlesFound []string `json:"articles_found"`
}

// System runs the whole pipeline: search Wikipedia, index what is missing,
// retrieve the nearest chunks and synthesize a cited answer.
type System struct {
	searcher    Searcher
	indexer     *Indexer
	retriever   *Retriever
	synthesizer *Synthesizer
	store       knowledge.Store
	maxResults  int
	logger      log.Logger
}

func NewSystem(searcher Searcher, indexer *Indexer, retriever *Retriever, synthesizer *Synthesizer, store knowledge.Store, maxResults int, logger log.Logger) *System {
	return &System{
		searcher:    searcher,
		indexer:     indexer,
		retriever:   retriever,
		synthesizer: synthesizer,
		store:       store,
		maxResults:  maxResults,
		logger:      logger,
	}
}

// AnswerQuestion answers the question from Wikipedia content, indexing any
// articles not yet cached. It returns ErrNoSources when the search yields
// no titles and ErrNoInformation when nothing relevant is in the store; the
// model is never invoked in either case.
func (s *System) AnswerQuestion(ctx context.Context, question string) (*Answer, error) {
	titles := s.searcher.Search(ctx, question, s.maxResults)
	if len(titles) == 0 {
		return nil, ErrNoSources
	}
	s.logger.Info("found candidate articles", "question", question, "titles", titles)

	report, err := s.indexer.EnsureIndexed(ctx, titles)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("indexing complete",
		"indexed", report.Indexed,
		"cached", report.AlreadyPresent,
		"not_found", report.NotFound,
		"failed", len(report.Failed))

	chunks, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoInformation
	}

	answer, sources, err := s.synthesizer.Synthesize(ctx, question, chunks)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Answer:        answer,
		Sources:       sources,
		ArticlesFound: titles,
	}, nil
}

// CacheStats reports the size of the knowledge store.
func (s *System) CacheStats(ctx context.Context) (knowledge.Stats, error) {
	return s.store.Stats(ctx)
}
