package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/personabot/internal/config"
	"github.com/sandevgo/personabot/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var envCmd = &cobra.Command{
	Use:          "env",
	Short:        "Print the effective configuration as .env lines",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		marshal := env.MarshalEnvRedacted
		if showSecrets {
			marshal = env.MarshalEnv
		}

		sections := []struct {
			name string
			cfg  any
		}{
			{"app", config.NewAppConfig(ctx)},
			{"composer", config.NewComposerConfig(ctx)},
			{"history", config.NewHistoryConfig(ctx)},
			{"llm", config.NewLLMConfig(ctx)},
			{"http", config.NewHTTPConfig(ctx)},
		}

		out := cmd.OutOrStdout()
		for _, s := range sections {
			text, err := marshal(s.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal %s config: %w", s.name, err)
			}
			fmt.Fprintf(out, "# %s\n%s\n", s.name, text)
		}
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secrets instead of masking them")
	rootCmd.AddCommand(envCmd)
}
