package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/personabot/pkg/log"
)

const (
	HistoryBackendSQLite = "sqlite"
	HistoryBackendRedis  = "redis"
	HistoryBackendNone   = "none"
)

type HistoryConfig struct {
	Backend string `env:"HISTORY_BACKEND" envDefault:"sqlite"`
	Retries int    `env:"HISTORY_RETRIES" envDefault:"1"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisMaxTurns int           `env:"REDIS_MAX_TURNS" envDefault:"200"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"0s"`
}

func NewHistoryConfig(ctx context.Context) *HistoryConfig {
	c := &HistoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse History config")
	}
	return c
}
