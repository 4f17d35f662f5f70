package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docquery/internal/adapter/cache"
	"docquery/internal/adapter/chunker"
	"docquery/internal/adapter/retriever"
	"docquery/internal/adapter/store"
	"docquery/internal/domain"
	"docquery/internal/usecase"
)

type staticExtractor struct{ text string }

func (e staticExtractor) ExtractText(url string) (string, error) { return e.text, nil }

type staticGenerator struct{}

func (staticGenerator) GenerateAnswer(question, context string) (string, error) {
	return "answer to: " + question, nil
}

func (staticGenerator) Available() bool { return true }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fallback := retriever.NewLexicalScorer(retriever.DefaultScorerOptions())
	engine := usecase.NewQueryEngine(usecase.Options{
		Extractor: staticExtractor{text: "Grace period is thirty days. Waiting period is 2 years."},
		Chunker:   chunker.NewWordChunker(100, 0),
		Store:     store.NewRetrievalStore(nil, nil, fallback, log),
		Generator: staticGenerator{},
		MemCache:  cache.NewDocumentCache(8, time.Minute),
		Log:       log,
	})
	return NewServer(engine, "test-key", map[string]any{"llm_model": "test"}, log)
}

func postQuery(t *testing.T, handler http.Handler, token string, req domain.QueryRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := postQuery(t, srv.Handler(), "test-key", domain.QueryRequest{
		Documents: "https://example.com/policy.pdf",
		Questions: []string{"What is the grace period?", "What is the waiting period?"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(resp.Answers))
	}
	if resp.Answers[0] != "answer to: What is the grace period?" {
		t.Errorf("unexpected answer: %q", resp.Answers[0])
	}
}

func TestQueryRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	for _, token := range []string{"", "wrong-key"} {
		w := postQuery(t, handler, token, domain.QueryRequest{
			Documents: "https://example.com/policy.pdf",
			Questions: []string{"q"},
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("token %q: expected 401, got %d", token, w.Code)
		}
		if w.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("token %q: missing WWW-Authenticate header", token)
		}
	}
}

func TestQueryValidatesBody(t *testing.T) {
	srv := newTestServer(t)

	w := postQuery(t, srv.Handler(), "test-key", domain.QueryRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty request, got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{broken")))
	r.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid json, got %d", rec.Code)
	}
}

func TestHealthEndpointIsOpen(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health domain.Health
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" {
		t.Errorf("unexpected status %q", health.Status)
	}
}

func TestCacheInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	postQuery(t, handler, "test-key", domain.QueryRequest{
		Documents: "https://example.com/policy.pdf",
		Questions: []string{"What is the grace period?"},
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/cache/info", nil)
	r.Header.Set("Authorization", "Bearer test-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var info struct {
		CacheSize       int      `json:"cache_size"`
		CachedDocuments []string `json:"cached_documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.CacheSize != 1 || len(info.CachedDocuments) != 1 {
		t.Errorf("unexpected cache info: %+v", info)
	}
}
