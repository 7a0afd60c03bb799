package command

import (
	"github.com/sandevgo/personabot/internal/core"
)

// NewRouter wires the chat commands. eraser may be nil when history is disabled.
func NewRouter(
	personas core.PersonaLister,
	selector core.CharacterSelector,
	eraser core.HistoryEraser,
) *Router {
	r := New([]core.Command{
		NewPersonasCommand(personas, selector),
		NewPersonaCommand(personas, selector),
	})
	if eraser != nil {
		r.Register(NewResetCommand(eraser, selector))
	}
	r.Register(NewHelpCommand(r))
	return r
}
