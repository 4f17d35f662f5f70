package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestWordChunkerBasic(t *testing.T) {
	c := NewWordChunker(20, 0)

	chunks, err := c.Chunk("Grace period is thirty days. Waiting period is 2 years.")
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for _, chunk := range chunks {
		if chunk.Content == "" {
			t.Error("chunk has empty content")
		}
		if chunk.CharCount != len(chunk.Content) {
			t.Errorf("char count %d != len(content) %d", chunk.CharCount, len(chunk.Content))
		}
		if chunk.WordCount != len(strings.Fields(chunk.Content)) {
			t.Errorf("word count %d is not the chunk's own word count", chunk.WordCount)
		}
	}
}

func TestWordChunkerDenseIDs(t *testing.T) {
	c := NewWordChunker(15, 0)

	chunks, err := c.Chunk("one two three four five six seven eight nine ten eleven twelve")
	if err != nil {
		t.Fatal(err)
	}

	for i, chunk := range chunks {
		if chunk.ID != i {
			t.Errorf("chunk %d has ID %d, want dense 0-based sequence", i, chunk.ID)
		}
	}
}

func TestWordChunkerLossless(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog again and again and again"
	c := NewWordChunker(25, 0)

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}

	var rejoined []string
	for _, chunk := range chunks {
		rejoined = append(rejoined, chunk.Content)
	}
	if strings.Join(rejoined, " ") != strings.Join(strings.Fields(text), " ") {
		t.Error("concatenated chunks do not reproduce the original token stream")
	}
}

func TestWordChunkerBound(t *testing.T) {
	const maxChars = 30
	c := NewWordChunker(maxChars, 0)

	text := strings.Repeat("insurance policy coverage terms ", 20)
	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatal(err)
	}

	for _, chunk := range chunks {
		// A single word longer than the limit is the only allowed overflow.
		if chunk.CharCount > maxChars && chunk.WordCount > 1 {
			t.Errorf("chunk exceeds %d chars: %q", maxChars, chunk.Content)
		}
	}
}

func TestWordChunkerEmptyInput(t *testing.T) {
	c := NewWordChunker(100, 0)

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		_, err := c.Chunk(text)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Chunk(%q): expected ErrEmptyInput, got %v", text, err)
		}
	}
}

func TestWordChunkerOversizedWord(t *testing.T) {
	c := NewWordChunker(5, 0)

	chunks, err := c.Chunk("extraordinarily long")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks even for oversized words")
	}
	if chunks[0].Content != "extraordinarily" {
		t.Errorf("oversized word should form its own chunk, got %q", chunks[0].Content)
	}
}

func TestWordChunkerSingleChunk(t *testing.T) {
	c := NewWordChunker(1000, 0)

	chunks, err := c.Chunk("short text")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "short text" {
		t.Errorf("unexpected content: %q", chunks[0].Content)
	}
	if chunks[0].WordCount != 2 || chunks[0].CharCount != 10 {
		t.Errorf("bad counts: words=%d chars=%d", chunks[0].WordCount, chunks[0].CharCount)
	}
}
