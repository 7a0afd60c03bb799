package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/personabot/pkg/log"
)

const (
	BudgetUnitChars  = "chars"
	BudgetUnitTokens = "tokens"
)

type ComposerConfig struct {
	DefaultMaxHistoryTurns int           `env:"DEFAULT_MAX_HISTORY_TURNS" envDefault:"20"`
	DefaultMaxTotalLength  int           `env:"DEFAULT_MAX_TOTAL_LENGTH" envDefault:"6000"`
	MaxHistoryTurnsLimit   int           `env:"MAX_HISTORY_TURNS_LIMIT" envDefault:"200"`
	BudgetUnit             string        `env:"BUDGET_UNIT" envDefault:"chars"`
	HistoryTimeout         time.Duration `env:"HISTORY_TIMEOUT" envDefault:"2s"`
}

func NewComposerConfig(ctx context.Context) *ComposerConfig {
	c := &ComposerConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Composer config")
	}
	if c.BudgetUnit != BudgetUnitChars && c.BudgetUnit != BudgetUnitTokens {
		log.FromCtx(ctx).Fatal().Str("unit", c.BudgetUnit).Msg("BUDGET_UNIT must be chars or tokens")
	}
	if c.MaxHistoryTurnsLimit < 0 {
		log.FromCtx(ctx).Fatal().Int("limit", c.MaxHistoryTurnsLimit).Msg("MAX_HISTORY_TURNS_LIMIT must not be negative")
	}
	return c
}

func (c ComposerConfig) GetDefaultMaxHistoryTurns() int {
	return c.DefaultMaxHistoryTurns
}

// GetMaxHistoryTurnsLimit caps caller supplied turn counts. Zero disables the cap.
func (c ComposerConfig) GetMaxHistoryTurnsLimit() int {
	return c.MaxHistoryTurnsLimit
}

func (c ComposerConfig) GetDefaultMaxTotalLength() int {
	return c.DefaultMaxTotalLength
}

func (c ComposerConfig) GetBudgetUnit() string {
	return c.BudgetUnit
}

func (c ComposerConfig) GetHistoryTimeout() time.Duration {
	return c.HistoryTimeout
}
