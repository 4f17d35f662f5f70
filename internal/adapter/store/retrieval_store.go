package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"docquery/internal/adapter/retriever"
	"docquery/internal/domain"
	"docquery/internal/port"
)

// RetrievalStore offers store/search over two interchangeable backends: a
// remote similarity index and a local lexical scorer. Backend failures are
// absorbed, never propagated: the store degrades to the lexical fallback and
// stays there for the rest of its lifetime.
type RetrievalStore struct {
	mu       sync.Mutex
	index    port.VectorIndex // nil when no similarity backend is configured
	embedder port.Embedder    // nil when embeddings are not configured
	fallback *retriever.LexicalScorer
	degraded bool
	log      *slog.Logger
}

func NewRetrievalStore(index port.VectorIndex, embedder port.Embedder, fallback *retriever.LexicalScorer, log *slog.Logger) *RetrievalStore {
	return &RetrievalStore{
		index:    index,
		embedder: embedder,
		fallback: fallback,
		log:      log,
	}
}

// Store indexes the chunks in the similarity backend. It returns true when
// the chunks landed in the similarity backend and false when the store
// degraded to the lexical fallback. It never fails: a storage failure
// downgrades the backend and indexes the same chunk set into the fallback.
func (s *RetrievalStore) Store(chunks []domain.Chunk) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil || s.embedder == nil || s.degraded {
		s.degrade("similarity backend not available", nil, chunks)
		return false
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.Embed(texts)
	if err != nil {
		s.degrade("embedding failed", err, chunks)
		return false
	}

	items := make([]port.VectorItem, len(chunks))
	for i, chunk := range chunks {
		metadata := chunk.Metadata()
		metadata["content"] = chunk.Content
		items[i] = port.VectorItem{
			ID:       uuid.New().String(),
			Values:   vectors[i],
			Metadata: metadata,
		}
	}

	if err := s.index.Upsert(items); err != nil {
		s.degrade("vector upsert failed", err, chunks)
		return false
	}

	s.log.Info("chunks stored in similarity backend", "count", len(chunks))
	return true
}

// Search returns the topK most relevant chunks for the query. On the
// similarity path any error degrades the store and the lexical fallback
// answers instead; results are empty when the fallback has nothing indexed.
func (s *RetrievalStore) Search(query string, topK int) ([]domain.SearchResult, error) {
	s.mu.Lock()
	usesSimilarity := s.index != nil && s.embedder != nil && !s.degraded
	s.mu.Unlock()

	if !usesSimilarity {
		return s.fallback.Search(query, topK)
	}

	results, err := s.searchSimilarity(query, topK)
	if err != nil {
		s.mu.Lock()
		s.degrade("similarity search failed", err, nil)
		s.mu.Unlock()
		return s.fallback.Search(query, topK)
	}
	return results, nil
}

func (s *RetrievalStore) searchSimilarity(query string, topK int) ([]domain.SearchResult, error) {
	vectors, err := s.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	matches, err := s.index.Query(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		content, _ := m.Metadata["content"].(string)
		results = append(results, domain.SearchResult{
			Content:  content,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return results, nil
}

// degrade marks the store as lexical-fallback and, when chunks are at hand,
// indexes them into the fallback scorer. Callers hold s.mu.
func (s *RetrievalStore) degrade(reason string, err error, chunks []domain.Chunk) {
	if !s.degraded {
		s.degraded = true
		s.log.Warn("degrading to lexical fallback", "reason", reason, "error", err)
	}
	if chunks != nil {
		s.fallback.Index(chunks)
	}
}

// Degraded reports whether the store has fallen back to lexical search.
func (s *RetrievalStore) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// BackendReachable probes the similarity backend. Observability only; the
// result does not re-promote a degraded store.
func (s *RetrievalStore) BackendReachable() bool {
	s.mu.Lock()
	index := s.index
	s.mu.Unlock()
	return index != nil && index.Ready()
}
