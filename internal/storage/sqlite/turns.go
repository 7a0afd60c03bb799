package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/personabot/internal/core"
)

// maxPrealloc caps the result buffer; limit is caller input.
const maxPrealloc = 64

// TurnsRepo persists conversation turns keyed by (user, character).
type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

func (r *TurnsRepo) AddTurn(ctx context.Context, turn core.ConversationTurn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO turns (user_id, character_id, user_message, assistant_response, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		turn.UserID, turn.CharacterID, turn.UserMessageText, turn.AssistantResponseText, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// FetchRecentTurns returns up to limit turns, newest first.
func (r *TurnsRepo) FetchRecentTurns(ctx context.Context, userID, characterID string, limit int) ([]core.ConversationTurn, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, user_id, character_id, user_message, assistant_response, created_at
		FROM turns
		WHERE user_id = ? AND character_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]core.ConversationTurn, 0, min(limit, maxPrealloc))
	for rows.Next() {
		var (
			t         core.ConversationTurn
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.CharacterID, &t.UserMessageText, &t.AssistantResponseText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.CreatedAt = time.Unix(0, createdAt)
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}

// DeleteTurns removes the stored history of one (user, character) pair.
func (r *TurnsRepo) DeleteTurns(ctx context.Context, userID, characterID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM turns WHERE user_id = ? AND character_id = ?`, userID, characterID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete turns: %w", err)
	}
	return res.RowsAffected()
}
