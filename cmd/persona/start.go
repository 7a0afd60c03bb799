package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
	"github.com/sandevgo/personabot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Start the PersonaBot services",
	Long:         `Loads personas and policy, opens the history store and serves the enabled transports (HTTP, Telegram).`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stdout)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("app", core.AppName).Str("version", core.AppVersion).Msg("starting services")

		services, err := NewServices(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build services")
			return err
		}

		if err := srv.Run(ctx, services); err != nil {
			return err
		}
		logger.Info().Msgf("%s has been shut down gracefully", core.AppName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
