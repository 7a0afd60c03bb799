package session

import (
	"sync"

	"github.com/sandevgo/personabot/internal/core"
)

var _ core.CharacterSelector = (*Selector)(nil)

// Selector remembers the chosen character per session. Unknown sessions get the default.
type Selector struct {
	mu       sync.RWMutex
	fallback string
	chosen   map[string]string
}

func NewSelector(defaultCharacter string) *Selector {
	return &Selector{
		fallback: defaultCharacter,
		chosen:   make(map[string]string),
	}
}

func (s *Selector) Current(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.chosen[sessionID]; ok {
		return id
	}
	return s.fallback
}

func (s *Selector) Select(sessionID, characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chosen[sessionID] = characterID
}
