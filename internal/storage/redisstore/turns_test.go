package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, cfg Config) (*TurnsStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTurnsStore(client, cfg), mr
}

func addTurn(t *testing.T, s *TurnsStore, user, char, msg string, at time.Time) {
	t.Helper()
	require.NoError(t, s.AddTurn(context.Background(), core.ConversationTurn{
		UserID: user, CharacterID: char, UserMessageText: msg, AssistantResponseText: "re: " + msg, CreatedAt: at,
	}))
}

func TestTurnsStore_FetchRecentTurns(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, Config{})

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	addTurn(t, s, "u1", "bard", "one", base)
	addTurn(t, s, "u1", "bard", "two", base.Add(time.Minute))
	addTurn(t, s, "u1", "bard", "three", base.Add(2*time.Minute))
	addTurn(t, s, "u1", "guru", "elsewhere", base)

	turns, err := s.FetchRecentTurns(ctx, "u1", "bard", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "three", turns[0].UserMessageText)
	assert.Equal(t, "two", turns[1].UserMessageText)
	assert.Equal(t, "re: three", turns[0].AssistantResponseText)
	assert.True(t, turns[0].CreatedAt.Equal(base.Add(2*time.Minute)))
	assert.Greater(t, turns[0].ID, turns[1].ID)

	empty, err := s.FetchRecentTurns(ctx, "u2", "bard", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTurnsStore_OutOfOrderWrites(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	addTurn(t, s, "u", "c", "late", base.Add(time.Hour))
	addTurn(t, s, "u", "c", "early", base)

	turns, err := s.FetchRecentTurns(context.Background(), "u", "c", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "late", turns[0].UserMessageText)
}

func TestTurnsStore_KeyEscaping(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	now := time.Now()
	addTurn(t, s, "a:b", "c", "first pair", now)
	addTurn(t, s, "a", "b:c", "second pair", now)

	turns, err := s.FetchRecentTurns(context.Background(), "a:b", "c", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "first pair", turns[0].UserMessageText)
}

func TestTurnsStore_Retention(t *testing.T) {
	s, mr := newTestStore(t, Config{Prefix: "test", MaxTurns: 2, TTL: time.Hour})

	base := time.Now()
	for i, msg := range []string{"a", "b", "c"} {
		addTurn(t, s, "u", "c", msg, base.Add(time.Duration(i)*time.Second))
	}

	key := s.listKey("u", "c")
	items, err := mr.List(key)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	turns, err := s.FetchRecentTurns(context.Background(), "u", "c", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestTurnsStore_DeleteTurns(t *testing.T) {
	s, _ := newTestStore(t, Config{})
	addTurn(t, s, "u", "c", "hi", time.Now())
	addTurn(t, s, "u", "c", "again", time.Now())

	n, err := s.DeleteTurns(context.Background(), "u", "c")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestTurnsStore_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewTurnsStore(client, Config{})

	_, err := s.FetchRecentTurns(context.Background(), "u", "c", 1)
	assert.Error(t, err)
}
