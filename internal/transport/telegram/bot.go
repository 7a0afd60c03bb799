package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/internal/service/chat"
	"github.com/sandevgo/personabot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Replier interface {
	Reply(ctx context.Context, req chat.Request) (chat.Result, error)
}

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	chat     Replier
	router   core.CmdRouter
	selector core.CharacterSelector
	sender   *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chat Replier,
	router core.CmdRouter,
	selector core.CharacterSelector,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		chat:     chat,
		router:   router,
		selector: selector,
		sender:   newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, log.WithComponent(ctx, "telegram"))
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !bot.cfg.IsAllowed(c.Sender().ID) {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func sessionID(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Sender().ID)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	out, _ := b.router.Execute(ctx, sessionID(c), "/persona")
	return b.sender.sendMarkdown(ctx, c.Recipient(), out, false)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	sid := sessionID(c)
	ctx = log.With(ctx, "session_id", sid)
	logger := log.FromCtx(ctx)

	if out, handled := b.router.Execute(ctx, sid, c.Text()); handled {
		return b.sender.sendMarkdown(ctx, c.Recipient(), out, false)
	}

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	res, err := b.chat.Reply(ctx, chat.Request{
		UserID:      sid,
		CharacterID: b.selector.Current(sid),
		Message:     c.Text(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("chat reply failed")
		return c.Send(userError(err))
	}

	if res.Text == "" {
		return c.Send("…")
	}
	return b.sender.sendMarkdown(ctx, c.Recipient(), res.Text, false)
}

func userError(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return "This character does not exist anymore. Pick another one with /personas."
	case errors.Is(err, core.ErrPromptTooLarge):
		return "Your message is too long, please shorten it."
	case errors.Is(err, core.ErrGeneration):
		return "The model is not responding right now, try again in a moment."
	default:
		return "Something went wrong, try again later."
	}
}
