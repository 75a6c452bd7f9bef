// Package openai implements the OpenAI chat-completions generative backend.
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

// Client generates answers through the chat-completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config configures the chat client. The API key is read from the environment
// variable named by APIKeyEnv at construction time.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	TimeoutSecs int
}

func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, apperr.Provider(fmt.Sprintf("missing OpenAI API key in env %s", cfg.APIKeyEnv), nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Name() string { return "openai" }

// Answer generates free text for the prompt.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body := struct {
		Model       string    `json:"model"`
		Messages    []message `json:"messages"`
		Temperature float64   `json:"temperature"`
	}{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: 0.1,
	}
	data, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", apperr.Provider("building chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperr.Provider("openai chat request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", apperr.Provider(fmt.Sprintf("openai chat failed: %s", resp.Status), nil)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Provider("decoding chat response", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", apperr.New(apperr.CodeProvider, "openai returned an empty answer")
	}
	return out.Choices[0].Message.Content, nil
}
