package composer

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

const defaultHistoryTimeout = 2 * time.Second

var _ core.Composer = (*Composer)(nil)

// Composer assembles bounded prompts. It holds no per-request state and is
// safe for concurrent use.
type Composer struct {
	personas       core.PersonaLookup
	policy         core.PolicyProvider
	history        core.HistoryReader
	measurer       Measurer
	historyTimeout time.Duration
}

type Option func(*Composer)

func WithMeasurer(m Measurer) Option {
	return func(c *Composer) { c.measurer = m }
}

// WithHistoryTimeout bounds each history fetch. Non-positive values disable the bound.
func WithHistoryTimeout(d time.Duration) Option {
	return func(c *Composer) { c.historyTimeout = d }
}

func New(personas core.PersonaLookup, policy core.PolicyProvider, history core.HistoryReader, opts ...Option) *Composer {
	c := &Composer{
		personas:       personas,
		policy:         policy,
		history:        history,
		measurer:       RuneMeasurer{},
		historyTimeout: defaultHistoryTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) Compose(ctx context.Context, req core.CompositionRequest) (core.ComposedPrompt, error) {
	if err := validate(req); err != nil {
		return core.ComposedPrompt{}, err
	}

	policy := c.policy.PolicyBlock()

	persona, err := c.personas.Lookup(req.CharacterID)
	if err != nil {
		return core.ComposedPrompt{}, err
	}

	l := newLayout(policy, persona, req.UserMessageText)

	// Fixed blocks alone must fit before history is worth fetching.
	base := c.measurer.Measure(l.render(0))
	if base > req.MaxTotalLength {
		return core.ComposedPrompt{}, fmt.Errorf("%w: fixed blocks need %d %s, budget is %d",
			core.ErrPromptTooLarge, base, c.measurer.Unit(), req.MaxTotalLength)
	}

	var (
		turns    []core.ConversationTurn
		degraded bool
	)
	if req.MaxHistoryTurns > 0 {
		turns, err = c.fetchHistory(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return core.ComposedPrompt{}, ctxErr
			}
			log.FromCtx(ctx).Warn().Err(err).
				Str("user_id", req.UserID).
				Str("character_id", req.CharacterID).
				Msg("history unavailable, composing without it")
			degraded = true
			turns = nil
		}
	}

	for _, t := range turns {
		l.turns = append(l.turns, renderTurn(t))
	}

	// Drop the oldest turn until the prompt fits. Zero turns always fits here.
	from := 0
	text := l.render(from)
	for from < len(l.turns) && c.measurer.Measure(text) > req.MaxTotalLength {
		from++
		text = l.render(from)
	}

	res := core.ComposedPrompt{
		PromptText:       text,
		Truncated:        from > 0 || degraded,
		Degraded:         degraded,
		TurnsIncluded:    len(l.turns) - from,
		HistoryAvailable: len(turns),
	}

	log.FromCtx(ctx).Debug().
		Str("character_id", req.CharacterID).
		Int("turns_included", res.TurnsIncluded).
		Int("history_available", res.HistoryAvailable).
		Bool("truncated", res.Truncated).
		Bool("degraded", res.Degraded).
		Msg("prompt composed")

	return res, nil
}

func validate(req core.CompositionRequest) error {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return fmt.Errorf("%w: user id is required", core.ErrInvalidArgument)
	case strings.TrimSpace(req.CharacterID) == "":
		return fmt.Errorf("%w: character id is required", core.ErrInvalidArgument)
	case req.MaxHistoryTurns < 0:
		return fmt.Errorf("%w: max history turns must not be negative, got %d", core.ErrInvalidArgument, req.MaxHistoryTurns)
	case req.MaxTotalLength <= 0:
		return fmt.Errorf("%w: max total length must be positive, got %d", core.ErrInvalidArgument, req.MaxTotalLength)
	}
	return nil
}

// fetchHistory returns the pair's turns oldest first, filtered to the requested
// pair and clamped to the requested limit.
func (c *Composer) fetchHistory(ctx context.Context, req core.CompositionRequest) ([]core.ConversationTurn, error) {
	fetchCtx := ctx
	if c.historyTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.historyTimeout)
		defer cancel()
	}

	raw, err := c.history.FetchRecentTurns(fetchCtx, req.UserID, req.CharacterID, req.MaxHistoryTurns)
	if err != nil {
		return nil, err
	}
	if fetchCtx.Err() != nil {
		// Late success after the deadline is discarded like a failure.
		return nil, fmt.Errorf("%w: %w", core.ErrUnavailable, fetchCtx.Err())
	}

	turns := make([]core.ConversationTurn, 0, min(len(raw), req.MaxHistoryTurns))
	for _, t := range raw {
		if t.UserID != req.UserID || t.CharacterID != req.CharacterID {
			log.FromCtx(ctx).Error().
				Str("user_id", req.UserID).
				Str("character_id", req.CharacterID).
				Str("turn_user_id", t.UserID).
				Str("turn_character_id", t.CharacterID).
				Msg("history store returned a turn from another conversation, discarding")
			continue
		}
		if len(turns) == req.MaxHistoryTurns {
			break
		}
		turns = append(turns, t)
	}

	slices.Reverse(turns)
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})

	return turns, nil
}
