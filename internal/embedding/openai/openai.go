// Package openai implements the remote embedding backend.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"securequery/internal/apperr"
)

// Client is an OpenAI embeddings client. All texts of a batch go out in a
// single request. Failures surface as provider errors without retrying; the
// caller treats them as fatal for the current ingest or query attempt.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

// Config configures the embeddings client. The API key is read from the
// environment variable named by APIKeyEnv at construction time.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	TimeoutSecs int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, apperr.Provider(fmt.Sprintf("missing embedding API key in env %s", cfg.APIKeyEnv), nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced vectors. It is set
// lazily on the first successful embed.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns one embedding vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body := struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}{Input: texts, Model: c.model}
	data, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Provider("building embeddings request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Provider("openai embeddings request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, apperr.Provider(fmt.Sprintf("openai embeddings failed: %s", resp.Status), nil)
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperr.Provider("decoding embeddings response", err)
	}
	if len(out.Data) != len(texts) {
		return nil, apperr.Newf(apperr.CodeProvider,
			"expected %d embeddings, got %d", len(texts), len(out.Data))
	}
	vectors := make([][]float64, len(out.Data))
	for i, item := range out.Data {
		if len(item.Embedding) == 0 {
			return nil, apperr.New(apperr.CodeProvider, "empty embedding returned")
		}
		vectors[i] = item.Embedding
	}
	if c.dimension == 0 {
		c.dimension = len(vectors[0])
	}
	return vectors, nil
}
