package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

const (
	LLMProviderLlamaCpp = "llamacpp"
	LLMProviderOpenAI   = "openai"
	LLMProviderOllama   = "ollama"
	LLMProviderCustom   = "custom"

	DefaultLLMBaseURL = "http://localhost:8080"
)

type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"llamacpp"`
	BaseURL     string        `env:"LLM_BASE_URL" envDefault:"http://localhost:8080"`
	APIKey      string        `env:"LLM_API_KEY"`
	Model       string        `env:"LLM_MODEL" envDefault:"local"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"100"`
	Temperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	Stop        []string      `env:"LLM_STOP" envDefault:"Human:" envSeparator:"|"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func (c LLMConfig) GetGenerationParams() core.GenerationParams {
	stop := make([]string, len(c.Stop))
	copy(stop, c.Stop)
	return core.GenerationParams{
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Stop:        stop,
	}
}
