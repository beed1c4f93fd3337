package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/HendryAvila/foreman/internal/server"
	"github.com/HendryAvila/foreman/internal/telemetry"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: "Start the MCP server on the configured transport (stdio, sse or http).\n" +
			"Stops gracefully on SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := app.logger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics := telemetry.NewMetrics()
			s, cleanup, err := server.New(cfg, log, metrics)
			if err != nil {
				return apperr.StoreFailure("open the database", err)
			}
			defer cleanup()

			server.ServeMetrics(ctx, cfg.Server.MetricsAddr, metrics.Handler(), log)
			if err := server.Serve(ctx, s, cfg.Server, log); err != nil {
				return fmt.Errorf("serving %s: %w", cfg.Server.Transport, err)
			}
			log.Info("stopped")
			return nil
		},
	}
}

// commandContext returns the command context, or Background when run
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
