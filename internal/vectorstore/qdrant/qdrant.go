// Package qdrant provides a vector store backend on a remote Qdrant server,
// for deployments where the index should not live on the local disk.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"securequery/internal/domain"
	"securequery/internal/vectorstore"
)

// errNotFound marks a 404 from the server. The collection is created lazily
// on the first Add, so a missing collection reads as empty rather than as a
// failure.
var errNotFound = errors.New("collection not found")

// Store is a minimal REST client to Qdrant. The collection is created lazily
// with cosine distance on the first Add; Qdrant's reported similarity score
// is converted back to a distance.
type Store struct {
	url        string
	apiKey     string
	collection string

	mu        sync.Mutex
	dimension int

	client *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// ensureCollection creates the collection if missing. Qdrant returns 200 when
// it already exists with the same schema.
func (s *Store) ensureCollection(dimension int) error {
	if s.dimension == dimension {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body); err != nil {
		return err
	}
	s.dimension = dimension
	return nil
}

func (s *Store) Add(records []domain.LogRecord, vectors [][]float64) error {
	if err := vectorstore.ValidateBatch(records, vectors); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureCollection(len(vectors[0])); err != nil {
		return err
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":     pointID(rec.ID),
			"vector": vectors[i],
			"payload": map[string]any{
				"id":       rec.ID,
				"document": rec.ToText(),
				"metadata": rec.IndexMetadata(),
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Store) Search(vector []float64, k int) ([]domain.Match, error) {
	if err := vectorstore.ValidateK(k); err != nil {
		return nil, err
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				ID       string            `json:"id"`
				Document string            `json:"document"`
				Metadata map[string]string `json:"metadata"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return []domain.Match{}, nil
		}
		return nil, err
	}
	matches := make([]domain.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, domain.Match{
			ID:       r.Payload.ID,
			Document: r.Payload.Document,
			Metadata: r.Payload.Metadata,
			// Qdrant reports cosine similarity for cosine collections
			Distance: 1 - r.Score,
		})
	}
	return matches, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	dimension := s.dimension
	s.dimension = 0
	if dimension > 0 {
		return s.ensureCollection(dimension)
	}
	return nil
}

func (s *Store) Count() (int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := s.getJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return resp.Result.PointsCount, nil
}

func (s *Store) Close() error { return nil }

// pointID derives a deterministic UUID from the record id. Qdrant only
// accepts unsigned integers or UUIDs as point ids; the record's real id
// travels in the payload and comes back in search results.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func (s *Store) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

func (s *Store) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Store) getJSON(url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *Store) do(req *http.Request, out any) error {
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s %s: %w", req.Method, req.URL.Path, errNotFound)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
