package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/internal/service/ui"
	"github.com/spf13/cobra"
)

var composeFlags struct {
	user      string
	character string
	message   string
	turns     int
	budget    int
	raw       bool
}

var composeCmd = &cobra.Command{
	Use:          "compose",
	Short:        "Compose a prompt without calling the model",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		req := core.CompositionRequest{
			UserID:          composeFlags.user,
			CharacterID:     composeFlags.character,
			UserMessageText: composeFlags.message,
			MaxHistoryTurns: e.limits.GetDefaultMaxHistoryTurns(),
			MaxTotalLength:  e.limits.GetDefaultMaxTotalLength(),
		}
		if cmd.Flags().Changed("turns") {
			req.MaxHistoryTurns = composeFlags.turns
		}
		if cmd.Flags().Changed("budget") {
			req.MaxTotalLength = composeFlags.budget
		}

		res, err := e.composer.Compose(ctx, req)
		if err != nil {
			return err
		}

		if composeFlags.raw {
			fmt.Fprintln(cmd.OutOrStdout(), res.PromptText)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.ComposedPrompt(res, e.measurer.Unit(), e.measurer.Measure(res.PromptText)))
		return nil
	},
}

func init() {
	f := composeCmd.Flags()
	f.StringVarP(&composeFlags.user, "user", "u", "cli", "user id whose history is used")
	f.StringVarP(&composeFlags.character, "character", "c", "", "character id")
	f.StringVarP(&composeFlags.message, "message", "m", "", "new user message")
	f.IntVar(&composeFlags.turns, "turns", 0, "max history turns (default from config)")
	f.IntVar(&composeFlags.budget, "budget", 0, "max prompt length in budget units (default from config)")
	f.BoolVar(&composeFlags.raw, "raw", false, "print only the prompt text")
	_ = composeCmd.MarkFlagRequired("character")

	rootCmd.AddCommand(composeCmd)
}
