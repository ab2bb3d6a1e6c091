// Package chunk splits article text into overlapping fixed-size windows,
// the unit of embedding and retrieval.
package chunk

import (
	"fmt"
	"strings"
)

// Default window parameters, in characters.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// Chunker produces overlapping windows over text. The zero value is not
// usable; construct with New.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. overlap must be smaller than size: with
// overlap >= size the window start never advances and splitting would
// not terminate.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split returns the ordered windows of text. Windows are size characters
// long, consecutive windows share overlap characters, and each window is
// trimmed of surrounding whitespace with empty windows dropped. Character
// here means rune: multi-byte text is never split mid-character.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)

	var chunks []string
	for start := 0; start < n; start += c.size - c.overlap {
		end := start + c.size
		if end > n {
			end = n
		}
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}
	}

	return chunks
}
