package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sandevgo/personabot/configs"
	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/internal/providers/llm"
	"github.com/sandevgo/personabot/internal/service/chat"
	"github.com/sandevgo/personabot/internal/service/command"
	"github.com/sandevgo/personabot/internal/service/composer"
	"github.com/sandevgo/personabot/internal/service/history"
	"github.com/sandevgo/personabot/internal/service/persona"
	"github.com/sandevgo/personabot/internal/service/policy"
	"github.com/sandevgo/personabot/internal/service/session"
	"github.com/sandevgo/personabot/internal/storage/redisstore"
	"github.com/sandevgo/personabot/internal/storage/sqlite"
	"github.com/sandevgo/personabot/internal/transport/httpapi"
	"github.com/sandevgo/personabot/internal/transport/telegram"
	"github.com/sandevgo/personabot/pkg/log"
	"github.com/sandevgo/personabot/pkg/srv"
)

// engine is the composition core plus the resources it holds open.
type engine struct {
	app      *config.AppConfig
	limits   *config.ComposerConfig
	registry *persona.Registry
	policy   *policy.Provider
	history  *history.Guard
	composer *composer.Composer
	measurer composer.Measurer
	cleanups []srv.Service
}

func (e *engine) close() {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		_ = e.cleanups[i].Shutdown(context.Background())
	}
}

func newEngine(ctx context.Context) (*engine, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	e := &engine{
		app:    config.NewAppConfig(ctx),
		limits: config.NewComposerConfig(ctx),
	}

	created, err := configs.WriteDefaults(e.app.GetPersonasPath(), e.app.GetPolicyPath())
	if err != nil {
		return nil, err
	}
	for _, path := range created {
		logger.Info().Str("path", path).Msg("wrote default config")
	}

	// 2. Personas and policy
	e.registry = persona.NewRegistry(persona.NewFileSource(e.app.GetPersonasPath(), e.app.WatchInterval))
	if err := e.registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}

	block, err := policy.LoadFile(e.app.GetPolicyPath())
	if err != nil {
		logger.Warn().Err(err).Msg("using built-in policy")
		block = policy.Default
	}
	e.policy = policy.NewProvider(block)

	// 3. History
	store, cleanups, err := initHistory(ctx, e.app)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	e.cleanups = append(e.cleanups, cleanups...)
	e.history = history.NewGuard(store, config.NewHistoryConfig(ctx).Retries)

	// 4. Composer
	e.measurer, err = composer.NewMeasurer(e.limits.GetBudgetUnit())
	if err != nil {
		e.close()
		return nil, err
	}
	e.composer = composer.New(e.registry, e.policy, e.history,
		composer.WithMeasurer(e.measurer),
		composer.WithHistoryTimeout(e.limits.GetHistoryTimeout()),
	)

	return e, nil
}

func NewServices(ctx context.Context) ([]srv.Service, error) {
	e, err := newEngine(ctx)
	if err != nil {
		return nil, err
	}
	services := append([]srv.Service{}, e.cleanups...)
	services = append(services, e.registry)

	// 5. Generation backend
	llmCfg := config.NewLLMConfig(ctx)
	gen, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	chatSvc := chat.NewService(e.composer, gen, e.history, e.limits, llmCfg)

	// 6. Transports
	transports, err := initTransports(ctx, e, chatSvc)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to initialize transports: %w", err)
	}
	if len(transports) == 0 {
		e.close()
		return nil, errors.New("no transport enabled, set ENABLE_HTTP or ENABLE_TELEGRAM")
	}

	return append(services, transports...), nil
}

func initHistory(ctx context.Context, app *config.AppConfig) (core.HistoryStore, []srv.Service, error) {
	cfg := config.NewHistoryConfig(ctx)
	logger := log.FromCtx(ctx)

	switch cfg.Backend {
	case config.HistoryBackendSQLite:
		db, err := sqlite.NewDB(ctx, app.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewTurnsRepo(db), []srv.Service{srv.NewCleanup(db.Close)}, nil

	case config.HistoryBackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.NewTurnsStore(client, redisstore.Config{
			MaxTurns: cfg.RedisMaxTurns,
			TTL:      cfg.RedisTTL,
		})
		// An unreachable redis degrades compositions instead of blocking startup.
		if err := store.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not reachable yet")
		}
		return store, []srv.Service{srv.NewCleanup(client.Close)}, nil

	case config.HistoryBackendNone:
		logger.Info().Msg("history disabled")
		return history.Noop{}, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}
}

func initTransports(ctx context.Context, e *engine, chatSvc *chat.Service) ([]srv.Service, error) {
	var services []srv.Service

	if e.app.IsHTTPEnabled() {
		handler := httpapi.NewHandler(ctx, chatSvc, e.registry)
		services = append(services, httpapi.NewServer(config.NewHTTPConfig(ctx), handler))
	}

	if e.app.IsTelegramEnabled() {
		tgCfg := config.NewTelegramConfig(ctx)
		selector := session.NewSelector(defaultCharacter(tgCfg.DefaultCharacter, e.registry))
		router := command.NewRouter(e.registry, selector, e.history)

		bot, err := telegram.NewBot(ctx, tgCfg, chatSvc, router, selector)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

// defaultCharacter falls back to the first persona by id when none is configured.
func defaultCharacter(configured string, personas core.PersonaLister) string {
	if configured != "" {
		return configured
	}
	if list := personas.List(); len(list) > 0 {
		return list[0].CharacterID
	}
	return ""
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
