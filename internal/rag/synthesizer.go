package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/skepee/knowledge-rag/internal/knowledge"
	"github.com/skepee/knowledge-rag/internal/llm"
)

const answerSystemPrompt = "You are a helpful research assistant that answers questions based on Wikipedia content. Always cite your sources using [number] format."

// Source is a cited article. Index is the citation number used in the
// answer text, assigned in order of first appearance, starting at 1.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Index int    `json:"index"`
}

// Synthesizer turns retrieved chunks into a cited answer.
type Synthesizer struct {
	completer llm.Completer
}

func NewSynthesizer(completer llm.Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize asks the model to answer the question from the given chunks.
// Each chunk is prefixed with the citation number of its article, so the
// model can cite by number. The model's text is returned verbatim.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []knowledge.Retrieved) (string, []Source, error) {
	sources, contextText := buildContext(chunks)

	prompt := fmt.Sprintf(`Answer the question based on the Wikipedia content provided below.
Include citations using [numbers] that correspond to the sources.
If the answer is not in the context, say "I don't have enough information."

Context from Wikipedia:
%s

Question: %s

Please provide a comprehensive answer with citations.`, contextText, question)

	answer, err := s.completer.Complete(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("generating answer: %w", err)
	}
	return answer, sources, nil
}

// buildContext assigns each distinct article the next citation number in
// order of first appearance and prefixes every chunk with its article's
// number.
func buildContext(chunks []knowledge.Retrieved) ([]Source, string) {
	var sources []Source
	indexByTitle := make(map[string]int)
	parts := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		idx, ok := indexByTitle[chunk.Title]
		if !ok {
			idx = len(sources) + 1
			indexByTitle[chunk.Title] = idx
			sources = append(sources, Source{Title: chunk.Title, URL: chunk.URL, Index: idx})
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", idx, chunk.Text))
	}

	return sources, strings.Join(parts, "\n\n")
}
