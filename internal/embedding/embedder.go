// Package embedding selects and constructs the embedding backend.
package embedding

import (
	"context"
	"os"

	"securequery/internal/apperr"
	"securequery/internal/config"
	"securequery/internal/domain"
	"securequery/internal/embedding/hashing"
	"securequery/internal/embedding/openai"
)

// One embeds a single text. Defined as Embed([text])[0].
func One(ctx context.Context, e domain.Embedder, text string) ([]float64, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// New constructs the embedding backend named by the config. The choice is
// fixed for the process lifetime: mixing backends between ingest and query
// produces meaningless similarity scores.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "auto", "":
		return newAuto(cfg)
	case "openai":
		return openai.NewClient(openaiConfig(cfg))
	case "hashing":
		return hashing.New(), nil
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "unknown embedder type: %s", cfg.Type)
	}
}

// newAuto prefers the remote backend when its credential is present in the
// environment and falls back to the local hashing embedder otherwise. The
// local backend has no preconditions, so auto-selection always succeeds.
func newAuto(cfg config.EmbedderConfig) (domain.Embedder, error) {
	if os.Getenv(cfg.OpenAI.APIKeyEnv) != "" {
		return openai.NewClient(openaiConfig(cfg))
	}
	return hashing.New(), nil
}

func openaiConfig(cfg config.EmbedderConfig) openai.Config {
	return openai.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
		Model:       cfg.OpenAI.Model,
		TimeoutSecs: cfg.OpenAI.TimeoutSecs,
	}
}
