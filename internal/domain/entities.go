package domain

// Chunk is a bounded slice of a document's extracted text, the atomic unit
// of retrieval. Chunks are immutable once created and belong to a single
// document's session.
type Chunk struct {
	ID        int
	Content   string
	WordCount int
	CharCount int
}

// Metadata returns the chunk's positional metadata in the shape stored
// alongside vectors and echoed back in search results.
func (c Chunk) Metadata() map[string]any {
	return map[string]any{
		"chunk_id":   c.ID,
		"word_count": c.WordCount,
		"char_count": c.CharCount,
	}
}

// SearchResult is a scored match produced fresh per query.
type SearchResult struct {
	Content  string
	Score    float64
	Metadata map[string]any
}

// QueryRequest asks a list of questions against one remote document.
// The wire field is "documents" for compatibility with existing clients,
// but it carries a single URL.
type QueryRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// QueryResponse carries one answer per question, positionally aligned.
// A failed answer is an error-message string, never omitted.
type QueryResponse struct {
	Answers []string `json:"answers"`
}

// Health reports backend and cache status. Observability only.
type Health struct {
	Status            string `json:"status"`
	LLMAvailable      bool   `json:"llm_available"`
	SimilarityBackend bool   `json:"similarity_backend"`
	LexicalFallback   bool   `json:"lexical_fallback"`
	CachedDocuments   int    `json:"cached_documents"`
}
