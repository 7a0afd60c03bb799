package core

import "context"

// HistoryReader returns turns for exactly one (userID, characterID) pair,
// most recent first, at most limit entries. No history is an empty slice, not an error.
type HistoryReader interface {
	FetchRecentTurns(ctx context.Context, userID, characterID string, limit int) ([]ConversationTurn, error)
}

type HistoryWriter interface {
	AddTurn(ctx context.Context, turn ConversationTurn) error
}

type HistoryStore interface {
	HistoryReader
	HistoryWriter
}

// HistoryEraser clears one (userID, characterID) history and reports how many turns were removed.
type HistoryEraser interface {
	DeleteTurns(ctx context.Context, userID, characterID string) (int64, error)
}
