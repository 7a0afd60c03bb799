package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/personabot/internal/core"
)

const defaultPrefix = "persona"

// Config tunes key layout and retention of the redis history store.
type Config struct {
	Prefix   string        // key prefix, default "persona"
	MaxTurns int           // turns kept per pair, 0 keeps everything
	TTL      time.Duration // list expiry refreshed on write, 0 = no expiry
}

// TurnsStore keeps each (user, character) history in one list, newest at the head.
type TurnsStore struct {
	client redis.UniversalClient
	cfg    Config
}

func NewTurnsStore(client redis.UniversalClient, cfg Config) *TurnsStore {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	return &TurnsStore{client: client, cfg: cfg}
}

type storedTurn struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	Character string `json:"character_id"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`
	CreatedAt int64  `json:"created_at"`
}

// IDs are escaped so a ':' in a user id cannot collide with another pair.
func (s *TurnsStore) listKey(userID, characterID string) string {
	return fmt.Sprintf("%s:turns:%s:%s", s.cfg.Prefix, url.QueryEscape(userID), url.QueryEscape(characterID))
}

func (s *TurnsStore) seqKey() string {
	return s.cfg.Prefix + ":turns:seq"
}

func (s *TurnsStore) AddTurn(ctx context.Context, turn core.ConversationTurn) error {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate turn id: %w", err)
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	payload, err := json.Marshal(storedTurn{
		ID:        id,
		UserID:    turn.UserID,
		Character: turn.CharacterID,
		User:      turn.UserMessageText,
		Assistant: turn.AssistantResponseText,
		CreatedAt: createdAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := s.listKey(turn.UserID, turn.CharacterID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	if s.cfg.MaxTurns > 0 {
		pipe.LTrim(ctx, key, 0, int64(s.cfg.MaxTurns-1))
	}
	if s.cfg.TTL > 0 {
		pipe.Expire(ctx, key, s.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push turn: %w", err)
	}
	return nil
}

// FetchRecentTurns returns up to limit turns, newest first.
func (s *TurnsStore) FetchRecentTurns(ctx context.Context, userID, characterID string, limit int) ([]core.ConversationTurn, error) {
	if limit <= 0 {
		return nil, nil
	}

	items, err := s.client.LRange(ctx, s.listKey(userID, characterID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	turns := make([]core.ConversationTurn, 0, len(items))
	for _, item := range items {
		var st storedTurn
		if err := json.Unmarshal([]byte(item), &st); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, core.ConversationTurn{
			ID:                    st.ID,
			UserID:                st.UserID,
			CharacterID:           st.Character,
			UserMessageText:       st.User,
			AssistantResponseText: st.Assistant,
			CreatedAt:             time.Unix(0, st.CreatedAt),
		})
	}

	// Writers may push out of timestamp order; head order breaks ties.
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].CreatedAt.After(turns[j].CreatedAt)
	})

	return turns, nil
}

func (s *TurnsStore) DeleteTurns(ctx context.Context, userID, characterID string) (int64, error) {
	key := s.listKey(userID, characterID)
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return 0, fmt.Errorf("failed to delete turns: %w", err)
	}
	return n, nil
}

func (s *TurnsStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
