package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/personabot/internal/service/ui"
	"github.com/spf13/cobra"
)

var personasCmd = &cobra.Command{
	Use:          "personas",
	Short:        "List configured personas",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		fmt.Fprint(cmd.OutOrStdout(), ui.PersonaList(e.registry.List()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
}
