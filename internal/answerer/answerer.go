// Package answerer selects and constructs the generative backend that turns
// an assembled prompt into a natural-language answer.
package answerer

import (
	"context"
	"os"

	"securequery/internal/answerer/gemini"
	"securequery/internal/answerer/openai"
	"securequery/internal/apperr"
	"securequery/internal/config"
	"securequery/internal/domain"
)

// New constructs the generative provider named by the config. With provider
// "auto" it tries Gemini first, then OpenAI, and returns a nil Answerer when
// no credential is configured, so the caller renders setup guidance instead
// of failing. The credential here is the generative one; it is never handed
// to the embedding client.
func New(ctx context.Context, cfg config.LLMConfig) (domain.Answerer, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(ctx, geminiConfig(cfg))
	case "openai":
		return openai.NewClient(openaiConfig(cfg))
	case "auto", "":
		if os.Getenv(cfg.Gemini.APIKeyEnv) != "" {
			return gemini.NewClient(ctx, geminiConfig(cfg))
		}
		if os.Getenv(cfg.OpenAI.APIKeyEnv) != "" {
			return openai.NewClient(openaiConfig(cfg))
		}
		return nil, nil
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "unknown llm provider: %s", cfg.Provider)
	}
}

func geminiConfig(cfg config.LLMConfig) gemini.Config {
	return gemini.Config{
		APIKeyEnv:   cfg.Gemini.APIKeyEnv,
		Model:       cfg.Gemini.Model,
		TimeoutSecs: cfg.Gemini.TimeoutSecs,
	}
}

func openaiConfig(cfg config.LLMConfig) openai.Config {
	return openai.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
		Model:       cfg.OpenAI.Model,
		TimeoutSecs: cfg.OpenAI.TimeoutSecs,
	}
}
