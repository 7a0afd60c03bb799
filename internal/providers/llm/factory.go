package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

const (
	openAIBaseURL = "https://api.openai.com"
	ollamaBaseURL = "http://localhost:11434"
)

// NewProvider creates the generation backend selected by configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.Generator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	bearer := func(baseURL string) *OpenAICompatible {
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			Timeout:    cfg.Timeout,
		})
	}

	switch cfg.Provider {
	case config.LLMProviderLlamaCpp:
		// llama.cpp server ignores the model name and needs no auth.
		return NewOpenAICompatible(OpenAICompatibleConfig{BaseURL: cfg.BaseURL, Model: cfg.Model, Timeout: cfg.Timeout}), nil
	case config.LLMProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for openai")
		}
		return bearer(orDefault(cfg.BaseURL, config.DefaultLLMBaseURL, openAIBaseURL)), nil
	case config.LLMProviderOllama:
		return bearer(orDefault(cfg.BaseURL, config.DefaultLLMBaseURL, ollamaBaseURL)), nil
	case config.LLMProviderCustom:
		return bearer(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// orDefault swaps the generic default URL for a provider-specific one.
func orDefault(url, genericDefault, providerDefault string) string {
	if url == "" || url == genericDefault {
		return providerDefault
	}
	return url
}
