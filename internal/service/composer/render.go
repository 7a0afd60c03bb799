package composer

import (
	"slices"
	"strings"

	"github.com/sandevgo/personabot/internal/core"
)

const (
	userPrefix      = "Human: "
	assistantPrefix = "Assistant:"
	blockSeparator  = "\n\n"
)

// renderPolicy renders the system rules block.
func renderPolicy(p core.PolicyBlock) string {
	return "System: " + strings.TrimSpace(p.Text)
}

// renderPersona renders the character description. Optional lines are
// omitted when empty so the block stays stable for a given definition.
func renderPersona(p core.PersonaDefinition) string {
	var b strings.Builder
	b.WriteString("Character: ")
	b.WriteString(p.Name)

	line := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		b.WriteString("\n")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
	}

	line("Background", p.BackgroundText)
	line("Personality", strings.Join(p.PersonalityTraits, ", "))
	line("Speaking style", p.SpeakingStyleText)

	if len(p.KnowledgeAreas) > 0 {
		areas := slices.Clone(p.KnowledgeAreas)
		slices.Sort(areas)
		line("Knowledge areas", strings.Join(areas, ", "))
	}
	line("Goal", p.InteractionGoal)

	return b.String()
}

func renderTurn(t core.ConversationTurn) string {
	return userPrefix + t.UserMessageText + "\n" + assistantPrefix + " " + t.AssistantResponseText
}

// layout holds the pre-rendered blocks of one composition.
type layout struct {
	policy  string
	persona string
	turns   []string // oldest first
	message string
}

func newLayout(policy core.PolicyBlock, persona core.PersonaDefinition, msg string) *layout {
	return &layout{
		policy:  renderPolicy(policy),
		persona: renderPersona(persona),
		message: userPrefix + msg,
	}
}

// render joins the fixed blocks with the newest turns starting at index from.
func (l *layout) render(from int) string {
	parts := make([]string, 0, len(l.turns)-from+4)
	parts = append(parts, l.policy, l.persona)
	parts = append(parts, l.turns[from:]...)
	parts = append(parts, l.message, assistantPrefix)
	return strings.Join(parts, blockSeparator)
}
