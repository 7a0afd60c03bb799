package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/personabot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"PERSONA_RUNTIME_PATH" envDefault:".personabot"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`

	// Transport Flags
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Persona sources
	PersonasFile  string        `env:"PERSONAS_FILE" envDefault:"personas.yaml"`
	PolicyFile    string        `env:"POLICY_FILE" envDefault:"policy.yaml"`
	WatchInterval time.Duration `env:"PERSONA_WATCH_INTERVAL" envDefault:"2s"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "personabot.db")
}

func (c AppConfig) GetPersonasPath() string {
	return c.inRuntime(c.PersonasFile)
}

func (c AppConfig) GetPolicyPath() string {
	return c.inRuntime(c.PolicyFile)
}

func (c AppConfig) IsHTTPEnabled() bool {
	return c.EnableHTTP
}

func (c AppConfig) IsTelegramEnabled() bool {
	return c.EnableTelegram
}

func (c AppConfig) inRuntime(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.RuntimePath, name)
}
