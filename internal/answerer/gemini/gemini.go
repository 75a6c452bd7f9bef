// Package gemini implements the Gemini generative backend.
package gemini

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"securequery/internal/apperr"
)

// Client generates answers with a Gemini model.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// Config configures the Gemini client. The API key is read from the
// environment variable named by APIKeyEnv at construction time.
type Config struct {
	APIKeyEnv   string
	Model       string
	TimeoutSecs int
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, apperr.Provider(fmt.Sprintf("missing Gemini API key in env %s", cfg.APIKeyEnv), nil)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Provider("initializing Gemini client", err)
	}
	return &Client{client: client, model: cfg.Model, timeout: timeout}, nil
}

func (c *Client) Name() string { return "gemini" }

// Answer generates free text for the prompt.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	})
	if err != nil {
		return "", apperr.Provider("gemini generation failed", err)
	}
	text := resp.Text()
	if text == "" {
		return "", apperr.New(apperr.CodeProvider, "gemini returned an empty answer")
	}
	return text, nil
}
