package ui

import (
	"testing"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestComposedPrompt(t *testing.T) {
	out := ComposedPrompt(core.ComposedPrompt{
		PromptText:       "System: hi",
		Truncated:        true,
		Degraded:         true,
		TurnsIncluded:    1,
		HistoryAvailable: 3,
	}, "chars", 10)

	assert.Contains(t, out, "System: hi")
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "10 chars")
	assert.Contains(t, out, "truncated")
	assert.Contains(t, out, "history unavailable")
}

func TestPersonaList(t *testing.T) {
	out := PersonaList([]core.PersonaDefinition{
		{CharacterID: "love_guru", Name: "Aura", BackgroundText: "Counselor."},
		{CharacterID: "bard", Name: "Quill"},
	})
	assert.Contains(t, out, "love_guru")
	assert.Contains(t, out, "Aura")
	assert.Contains(t, out, "Counselor.")
	assert.Contains(t, out, "Quill")
}
