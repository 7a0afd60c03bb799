package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/personabot/internal/core"
)

type PersonasCommand struct {
	personas  core.PersonaLister
	selector  core.CharacterSelector
	formatter *ResponseFormatter
}

func NewPersonasCommand(personas core.PersonaLister, selector core.CharacterSelector) *PersonasCommand {
	return &PersonasCommand{
		personas:  personas,
		selector:  selector,
		formatter: NewResponseFormatter(),
	}
}

func (c *PersonasCommand) Name() string {
	return "personas"
}

func (c *PersonasCommand) Description() string {
	return "List available characters"
}

func (c *PersonasCommand) Execute(_ context.Context, sessionID string, _ []string) (string, error) {
	list := c.personas.List()
	if len(list) == 0 {
		return c.formatter.Info("No characters configured"), nil
	}

	current := c.selector.Current(sessionID)
	items := make([]string, 0, len(list))
	for _, p := range list {
		item := fmt.Sprintf("`%s` %s", p.CharacterID, p.Name)
		if p.CharacterID == current {
			item += " (current)"
		}
		items = append(items, item)
	}

	return c.formatter.Combine(
		c.formatter.Info("Characters"),
		c.formatter.List(items),
		c.formatter.Tip("switch with /persona [id]"),
	), nil
}

type PersonaCommand struct {
	personas  core.PersonaLookup
	selector  core.CharacterSelector
	formatter *ResponseFormatter
}

func NewPersonaCommand(personas core.PersonaLookup, selector core.CharacterSelector) *PersonaCommand {
	return &PersonaCommand{
		personas:  personas,
		selector:  selector,
		formatter: NewResponseFormatter(),
	}
}

func (c *PersonaCommand) Name() string {
	return "persona"
}

func (c *PersonaCommand) Description() string {
	return "Show or change the current character"
}

func (c *PersonaCommand) Execute(_ context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		id := c.selector.Current(sessionID)
		p, err := c.personas.Lookup(id)
		if err != nil {
			return "", err
		}
		sections := []string{
			c.formatter.Info(p.Name),
			c.formatter.Label("ID", p.CharacterID),
		}
		if p.BackgroundText != "" {
			sections = append(sections, p.BackgroundText+"\n")
		}
		if len(p.PersonalityTraits) > 0 {
			sections = append(sections, c.formatter.Label("Personality", strings.Join(p.PersonalityTraits, ", ")))
		}
		sections = append(sections, c.formatter.Usage("/persona [id]"))
		return c.formatter.Combine(sections...), nil
	}

	p, err := c.personas.Lookup(args[0])
	if err != nil {
		return "", err
	}
	c.selector.Select(sessionID, p.CharacterID)

	return c.formatter.Success(fmt.Sprintf("Now talking to %s", p.Name)), nil
}

type ResetCommand struct {
	eraser    core.HistoryEraser
	selector  core.CharacterSelector
	formatter *ResponseFormatter
}

func NewResetCommand(eraser core.HistoryEraser, selector core.CharacterSelector) *ResetCommand {
	return &ResetCommand{
		eraser:    eraser,
		selector:  selector,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResetCommand) Name() string {
	return "reset"
}

func (c *ResetCommand) Description() string {
	return "Forget the conversation with the current character"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, _ []string) (string, error) {
	n, err := c.eraser.DeleteTurns(ctx, sessionID, c.selector.Current(sessionID))
	if err != nil {
		return "", fmt.Errorf("failed to reset history: %w", err)
	}
	return c.formatter.Success(fmt.Sprintf("Forgot %d turns", n)), nil
}

type HelpCommand struct {
	router    core.CmdRouter
	formatter *ResponseFormatter
}

func NewHelpCommand(router core.CmdRouter) *HelpCommand {
	return &HelpCommand{router: router, formatter: NewResponseFormatter()}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show available commands"
}

func (c *HelpCommand) Execute(context.Context, string, []string) (string, error) {
	cmds := c.router.ListCommands()
	items := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		items = append(items, fmt.Sprintf("/%s › %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(c.formatter.Info("Commands"), c.formatter.List(items)), nil
}
