package vectorindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"docquery/internal/port"
)

// PineconeIndex is a minimal REST client to a Pinecone index's data plane.
// It speaks to the index host directly; collection management belongs to
// the operator, not this service.
type PineconeIndex struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

// Options configures the Pinecone client.
type Options struct {
	APIKeyEnv string
	IndexHost string
	Namespace string
	Timeout   time.Duration
}

// NewPineconeIndex creates a client for an existing index. It fails when the
// API key or index host is missing; reachability is checked via Ready.
func NewPineconeIndex(opts Options) (*PineconeIndex, error) {
	apiKey := os.Getenv(opts.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
	}
	if opts.IndexHost == "" {
		return nil, fmt.Errorf("pinecone index host not configured")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &PineconeIndex{
		host:      opts.IndexHost,
		apiKey:    apiKey,
		namespace: opts.Namespace,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type upsertRequest struct {
	Vectors   []pineconeVector `json:"vectors"`
	Namespace string           `json:"namespace,omitempty"`
}

type pineconeVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

type queryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type statsResponse struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// Upsert adds or updates vectors with their metadata.
func (p *PineconeIndex) Upsert(items []port.VectorItem) error {
	if len(items) == 0 {
		return nil
	}

	vectors := make([]pineconeVector, len(items))
	for i, item := range items {
		vectors[i] = pineconeVector{
			ID:       item.ID,
			Values:   item.Values,
			Metadata: item.Metadata,
		}
	}

	body := upsertRequest{Vectors: vectors, Namespace: p.namespace}
	return p.postJSON("/vectors/upsert", body, nil)
}

// Query finds the topK nearest vectors with their stored metadata.
func (p *PineconeIndex) Query(vector []float32, topK int) ([]port.VectorMatch, error) {
	if topK <= 0 {
		topK = 3
	}

	body := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       p.namespace,
	}

	var resp queryResponse
	if err := p.postJSON("/query", body, &resp); err != nil {
		return nil, err
	}

	matches := make([]port.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, port.VectorMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

// Ready probes the index stats endpoint.
func (p *PineconeIndex) Ready() bool {
	var resp statsResponse
	return p.postJSON("/describe_index_stats", map[string]any{}, &resp) == nil
}

func (p *PineconeIndex) postJSON(path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pinecone %s returned %s: %s", path, resp.Status, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
