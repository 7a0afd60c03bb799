package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *TurnsRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTurnsRepo(db)
}

func TestTurnsRepo_FetchRecentTurns(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{
			UserID:                "u1",
			CharacterID:           "bard",
			UserMessageText:       msg,
			AssistantResponseText: "re: " + msg,
			CreatedAt:             base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{
		UserID: "u1", CharacterID: "guru", UserMessageText: "other", AssistantResponseText: "x", CreatedAt: base,
	}))
	require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{
		UserID: "u2", CharacterID: "bard", UserMessageText: "stranger", AssistantResponseText: "x", CreatedAt: base,
	}))

	t.Run("newest first within limit", func(t *testing.T) {
		turns, err := repo.FetchRecentTurns(ctx, "u1", "bard", 2)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "four", turns[0].UserMessageText)
		assert.Equal(t, "three", turns[1].UserMessageText)
		assert.True(t, turns[0].CreatedAt.Equal(base.Add(3*time.Minute)))
	})

	t.Run("scoped to pair", func(t *testing.T) {
		turns, err := repo.FetchRecentTurns(ctx, "u1", "bard", 100)
		require.NoError(t, err)
		assert.Len(t, turns, 4)
		for _, turn := range turns {
			assert.Equal(t, "u1", turn.UserID)
			assert.Equal(t, "bard", turn.CharacterID)
		}
	})

	t.Run("unknown pair is empty", func(t *testing.T) {
		turns, err := repo.FetchRecentTurns(ctx, "nobody", "bard", 5)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("zero limit", func(t *testing.T) {
		turns, err := repo.FetchRecentTurns(ctx, "u1", "bard", 0)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})
}

func TestTurnsRepo_SameTimestampOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, msg := range []string{"first", "second"} {
		require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{
			UserID: "u", CharacterID: "c", UserMessageText: msg, AssistantResponseText: "ok", CreatedAt: ts,
		}))
	}

	turns, err := repo.FetchRecentTurns(ctx, "u", "c", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "second", turns[0].UserMessageText)
	assert.Greater(t, turns[0].ID, turns[1].ID)
}

func TestTurnsRepo_DeleteTurns(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{UserID: "u", CharacterID: "c", UserMessageText: "hi", AssistantResponseText: "yo"}))

	n, err := repo.DeleteTurns(ctx, "u", "c")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	turns, err := repo.FetchRecentTurns(ctx, "u", "c", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestTurnsRepo_FetchRecentTurns_HugeLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.AddTurn(ctx, core.ConversationTurn{UserID: "u", CharacterID: "c", UserMessageText: "hi", AssistantResponseText: "yo"}))

	for _, limit := range []int{1 << 38, 1 << 50} {
		turns, err := repo.FetchRecentTurns(ctx, "u", "c", limit)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "hi", turns[0].UserMessageText)
	}
}
