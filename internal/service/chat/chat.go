package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

// Request is a chat message addressed to one character. Nil limits fall back
// to configured defaults.
type Request struct {
	UserID          string
	CharacterID     string
	Message         string
	MaxHistoryTurns *int
	MaxTotalLength  *int
	MaxTokens       int
	Temperature     *float32
}

type Result struct {
	Text   string
	Prompt core.ComposedPrompt
}

type Service struct {
	composer core.Composer
	gen      core.Generator
	history  core.HistoryWriter
	limits   core.ComposerConfig
	params   core.GenerationConfig
	now      func() time.Time
}

func NewService(
	composer core.Composer,
	gen core.Generator,
	history core.HistoryWriter,
	limits core.ComposerConfig,
	params core.GenerationConfig,
) *Service {
	return &Service{
		composer: composer,
		gen:      gen,
		history:  history,
		limits:   limits,
		params:   params,
		now:      time.Now,
	}
}

func (s *Service) compositionRequest(req Request) core.CompositionRequest {
	turns := s.limits.GetDefaultMaxHistoryTurns()
	if req.MaxHistoryTurns != nil {
		turns = *req.MaxHistoryTurns
	}
	if limit := s.limits.GetMaxHistoryTurnsLimit(); limit > 0 && turns > limit {
		turns = limit
	}
	total := s.limits.GetDefaultMaxTotalLength()
	if req.MaxTotalLength != nil {
		total = *req.MaxTotalLength
	}
	return core.CompositionRequest{
		UserID:          req.UserID,
		CharacterID:     req.CharacterID,
		UserMessageText: req.Message,
		MaxHistoryTurns: turns,
		MaxTotalLength:  total,
	}
}

// Compose builds the prompt for req without generating a reply.
func (s *Service) Compose(ctx context.Context, req Request) (core.ComposedPrompt, error) {
	return s.composer.Compose(ctx, s.compositionRequest(req))
}

// Reply composes, generates and records one turn. A failed write is logged
// and the reply is still returned.
func (s *Service) Reply(ctx context.Context, req Request) (Result, error) {
	ctx = log.With(ctx, "character_id", req.CharacterID)
	logger := log.FromCtx(ctx)

	prompt, err := s.Compose(ctx, req)
	if err != nil {
		return Result{}, err
	}

	params := s.params.GetGenerationParams()
	if req.MaxTokens > 0 {
		params.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	start := s.now()
	text, err := s.gen.Complete(ctx, prompt.PromptText, params)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}
	text = strings.TrimSpace(text)

	logger.Debug().
		Dur("took", s.now().Sub(start)).
		Int("reply_len", len(text)).
		Msg("reply generated")

	turn := core.ConversationTurn{
		UserID:                req.UserID,
		CharacterID:           req.CharacterID,
		UserMessageText:       req.Message,
		AssistantResponseText: text,
		CreatedAt:             s.now(),
	}
	if err := s.history.AddTurn(ctx, turn); err != nil {
		logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to save turn")
	}

	return Result{Text: text, Prompt: prompt}, nil
}
