package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text, in input order.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex is a remote similarity-search backend. It ranks stored items
// by vector-space nearness to a query embedding.
type VectorIndex interface {
	// Upsert adds or updates vectors with their metadata.
	Upsert(items []VectorItem) error

	// Query finds the k nearest vectors to the query vector.
	Query(vector []float32, topK int) ([]VectorMatch, error)

	// Ready reports whether the backend answered a liveness probe.
	Ready() bool
}

// VectorItem represents a vector to be stored.
type VectorItem struct {
	ID       string         // Unique identifier
	Values   []float32      // Embedding vector
	Metadata map[string]any // Stored alongside the vector; must include "content"
}

// VectorMatch represents a nearest-neighbor result.
type VectorMatch struct {
	ID       string         // Item ID
	Score    float64        // Backend-native similarity (higher is better)
	Metadata map[string]any // Metadata stored at upsert time
}
