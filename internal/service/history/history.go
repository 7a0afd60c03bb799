package history

import (
	"context"
	"fmt"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
	"github.com/sandevgo/personabot/pkg/retry"
)

var (
	_ core.HistoryStore  = (*Guard)(nil)
	_ core.HistoryEraser = (*Guard)(nil)
)

// Guard wraps a backend store: reads are retried and every backend failure
// is reported as core.ErrUnavailable.
type Guard struct {
	store   core.HistoryStore
	retrier *retry.Retrier
}

func NewGuard(store core.HistoryStore, retries int) *Guard {
	return &Guard{
		store:   store,
		retrier: retry.NewRetrier(retry.NewFastConfig(retries)),
	}
}

func (g *Guard) FetchRecentTurns(ctx context.Context, userID, characterID string, limit int) ([]core.ConversationTurn, error) {
	var turns []core.ConversationTurn
	attempt := 0
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		turns, err = g.store.FetchRecentTurns(ctx, userID, characterID, limit)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("history fetch failed")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrUnavailable, err)
	}
	return turns, nil
}

func (g *Guard) AddTurn(ctx context.Context, turn core.ConversationTurn) error {
	if err := g.store.AddTurn(ctx, turn); err != nil {
		return fmt.Errorf("%w: %w", core.ErrUnavailable, err)
	}
	return nil
}

func (g *Guard) DeleteTurns(ctx context.Context, userID, characterID string) (int64, error) {
	eraser, ok := g.store.(core.HistoryEraser)
	if !ok {
		return 0, fmt.Errorf("history backend cannot delete turns: %w", core.ErrInvalidArgument)
	}
	n, err := eraser.DeleteTurns(ctx, userID, characterID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrUnavailable, err)
	}
	return n, nil
}

// Noop is the store used when history is disabled.
type Noop struct{}

func (Noop) FetchRecentTurns(context.Context, string, string, int) ([]core.ConversationTurn, error) {
	return nil, nil
}

func (Noop) AddTurn(context.Context, core.ConversationTurn) error { return nil }

func (Noop) DeleteTurns(context.Context, string, string) (int64, error) { return 0, nil }
