package ui

import (
	"fmt"
	"strings"

	"github.com/sandevgo/personabot/internal/core"
)

// Meta renders a "label: value" pair with the label dimmed.
func Meta(label string, value any) string {
	return DescStyle.Render(label+":") + " " + UsageStyle.Render(fmt.Sprint(value))
}

// ComposedPrompt renders a prompt with its metadata for terminal output.
func ComposedPrompt(p core.ComposedPrompt, unit string, size int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("PROMPT"))
	b.WriteString("\n")
	b.WriteString(PromptStyle.Render(p.PromptText))
	b.WriteString("\n\n")

	meta := []string{
		Meta("size", fmt.Sprintf("%d %s", size, unit)),
		Meta("turns", fmt.Sprintf("%d/%d", p.TurnsIncluded, p.HistoryAvailable)),
	}
	if p.Truncated {
		meta = append(meta, WarnStyle.Render("truncated"))
	}
	if p.Degraded {
		meta = append(meta, WarnStyle.Render("history unavailable"))
	}
	b.WriteString(strings.Join(meta, "  "))
	b.WriteString("\n")
	return b.String()
}

// PersonaList renders registry contents as an aligned table.
func PersonaList(list []core.PersonaDefinition) string {
	width := 0
	for _, p := range list {
		width = max(width, len(p.CharacterID))
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("PERSONAS"))
	b.WriteString("\n")
	for _, p := range list {
		b.WriteString("  ")
		b.WriteString(UsageStyle.Render(fmt.Sprintf("%-*s", width, p.CharacterID)))
		b.WriteString("  ")
		b.WriteString(p.Name)
		if p.BackgroundText != "" {
			b.WriteString("  ")
			b.WriteString(DescStyle.Render(p.BackgroundText))
		}
		b.WriteString("\n")
	}
	return b.String()
}
