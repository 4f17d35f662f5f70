package retriever

import (
	"sort"
	"strings"
	"sync"

	"docquery/internal/domain"
)

// ScorerOptions externalizes the lexical scorer's term-expansion table and
// bonus weights. The defaults encode insurance-policy wording; this is a
// deliberate bias toward the question domain, not a general-purpose ranker.
type ScorerOptions struct {
	// Categories maps a semantic category to its expansion terms. A category
	// activates when any of its terms appears in the lower-cased query, and
	// activation contributes the category's full term set.
	Categories map[string][]string

	// DomainWords grant a flat bonus when any of them appears in a chunk.
	DomainWords []string

	// KeyPhrase grants a large bonus when it appears in both chunk and query.
	KeyPhrase string

	// KeyPhraseParts trigger the definition bonus when a chunk contains
	// "means" together with any of them.
	KeyPhraseParts []string

	OccurrenceWeight float64
	QueryTermBonus   float64
	DomainWordBonus  float64
	KeyPhraseBonus   float64
	DefinitionBonus  float64
}

// DefaultScorerOptions returns the tuned insurance-domain table.
func DefaultScorerOptions() ScorerOptions {
	return ScorerOptions{
		Categories: map[string][]string{
			"grace period":    {"grace period", "grace", "payment grace", "thirty days", "30 days"},
			"premium payment": {"premium payment", "premium", "payment"},
			"waiting period":  {"waiting period", "waiting", "period"},
			"maternity":       {"maternity", "pregnancy", "delivery"},
			"hospital":        {"hospital", "hospitalization"},
			"coverage":        {"coverage", "cover", "benefit"},
			"exclusion":       {"exclusion", "exclude", "not covered"},
			"claim":           {"claim", "claiming", "claimant"},
			"renewal":         {"renewal", "renew", "continue"},
			"policy":          {"policy", "insurance", "mediclaim"},
		},
		DomainWords:      []string{"grace", "period", "premium", "payment"},
		KeyPhrase:        "grace period",
		KeyPhraseParts:   []string{"grace", "period"},
		OccurrenceWeight: 0.5,
		QueryTermBonus:   2.0,
		DomainWordBonus:  1.0,
		KeyPhraseBonus:   5.0,
		DefinitionBonus:  3.0,
	}
}

// LexicalScorer is the embedding-free fallback ranker. Index replaces the
// working set; Search scores chunks by substring matching against the
// expanded term set. The per-term bonuses compound across matching terms;
// that compounding is part of the tuned behavior and is preserved as is.
type LexicalScorer struct {
	mu     sync.RWMutex
	opts   ScorerOptions
	chunks []domain.Chunk
}

func NewLexicalScorer(opts ScorerOptions) *LexicalScorer {
	if len(opts.Categories) == 0 {
		opts = DefaultScorerOptions()
	}
	return &LexicalScorer{opts: opts}
}

// Index replaces the scorer's working set with the given chunks.
func (s *LexicalScorer) Index(chunks []domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
}

// Indexed returns the size of the current working set.
func (s *LexicalScorer) Indexed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search returns at most topK chunks scoring above zero, best first.
// Reported scores are normalized to [0, 1].
func (s *LexicalScorer) Search(query string, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()

	if len(chunks) == 0 {
		return nil, nil
	}

	queryLower := strings.ToLower(query)
	terms := s.expandTerms(queryLower)

	type scored struct {
		chunk domain.Chunk
		score float64
	}
	var matches []scored

	for _, chunk := range chunks {
		contentLower := strings.ToLower(chunk.Content)
		score := 0.0

		for _, term := range terms {
			if !strings.Contains(contentLower, term) {
				continue
			}

			score += float64(strings.Count(contentLower, term)) * s.opts.OccurrenceWeight

			if strings.Contains(queryLower, term) {
				score += s.opts.QueryTermBonus
			}

			if containsAny(contentLower, s.opts.DomainWords) {
				score += s.opts.DomainWordBonus
			}

			if s.opts.KeyPhrase != "" &&
				strings.Contains(contentLower, s.opts.KeyPhrase) &&
				strings.Contains(queryLower, s.opts.KeyPhrase) {
				score += s.opts.KeyPhraseBonus
			}

			if strings.Contains(contentLower, "means") && containsAny(contentLower, s.opts.KeyPhraseParts) {
				score += s.opts.DefinitionBonus
			}
		}

		if score > 0 {
			matches = append(matches, scored{chunk: chunk, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		normalized := m.score / 10.0
		if normalized > 1.0 {
			normalized = 1.0
		}
		results = append(results, domain.SearchResult{
			Content:  m.chunk.Content,
			Score:    normalized,
			Metadata: m.chunk.Metadata(),
		})
	}

	return results, nil
}

// expandTerms unions the expansion sets of every category with a term present
// in the query. Categories are visited in sorted order so repeated calls
// produce the same term list. Falls back to the raw query when nothing matches.
func (s *LexicalScorer) expandTerms(queryLower string) []string {
	keys := make([]string, 0, len(s.opts.Categories))
	for k := range s.opts.Categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var terms []string
	for _, k := range keys {
		if containsAny(queryLower, s.opts.Categories[k]) {
			terms = append(terms, s.opts.Categories[k]...)
		}
	}

	if len(terms) == 0 {
		terms = []string{queryLower}
	}
	return terms
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
