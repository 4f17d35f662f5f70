package chunker

import (
	"errors"
	"strings"

	"docquery/internal/domain"
)

var (
	// ErrEmptyInput is returned when the document text is empty or whitespace-only.
	ErrEmptyInput = errors.New("no text content available for chunking")

	// ErrNoChunks is returned when no chunk could be formed from non-empty input.
	ErrNoChunks = errors.New("no valid chunks created from document")
)

// WordChunker splits text on whitespace and accumulates words into chunks of
// at most maxChars characters, never breaking inside a word. Chunks do not
// overlap: the overlap parameter is accepted for configuration compatibility
// but the algorithm does not apply it.
type WordChunker struct {
	maxChars int
	overlap  int
}

func NewWordChunker(maxChars, overlap int) *WordChunker {
	if maxChars <= 0 {
		maxChars = 800
	}
	return &WordChunker{
		maxChars: maxChars,
		overlap:  overlap,
	}
}

// Chunk splits text into non-overlapping, word-boundary-respecting chunks.
// Chunk IDs form a dense 0-based sequence in creation order; word and
// character counts are exact counts of each chunk's own content.
func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	words := strings.Fields(text)

	var chunks []domain.Chunk
	var current []string
	currentLen := 0

	closeChunk := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, " ")
		chunks = append(chunks, domain.Chunk{
			ID:        len(chunks),
			Content:   content,
			WordCount: len(current),
			CharCount: len(content),
		})
	}

	for _, word := range words {
		if currentLen+len(word)+1 > c.maxChars {
			closeChunk()
			current = []string{word}
			currentLen = len(word)
		} else {
			current = append(current, word)
			currentLen += len(word) + 1
		}
	}
	closeChunk()

	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	return chunks, nil
}
