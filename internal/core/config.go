package core

import "time"

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetPersonasPath() string
	GetPolicyPath() string
	IsHTTPEnabled() bool
	IsTelegramEnabled() bool
}

type ComposerConfig interface {
	GetDefaultMaxHistoryTurns() int
	GetDefaultMaxTotalLength() int
	GetMaxHistoryTurnsLimit() int
	GetBudgetUnit() string
	GetHistoryTimeout() time.Duration
}

type GenerationConfig interface {
	GetGenerationParams() GenerationParams
}
