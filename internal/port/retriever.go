package port

import "docquery/internal/domain"

// Searcher returns the top-k chunks relevant to a query, best first.
type Searcher interface {
	Search(query string, topK int) ([]domain.SearchResult, error)
}
