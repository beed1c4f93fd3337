// Package cli implements the foreman command line: serving the MCP server,
// applying the schema and importing users.
package cli

import (
	"io"
	"log/slog"

	"github.com/HendryAvila/foreman/internal/config"
	"github.com/HendryAvila/foreman/internal/telemetry"
	"github.com/spf13/cobra"
)

// App carries the streams every command writes to.
type App struct {
	Out    io.Writer
	ErrOut io.Writer

	configPath string
	envFile    string
}

// NewRootCmd creates the top-level "foreman" command and registers all
// subcommands.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "foreman",
		Short:         "Project catalogue MCP server with name-based lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)
	root.SetErr(app.ErrOut)

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (default ~/.foreman/config.yaml)")
	flags.StringVar(&app.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	config.BindFlags(flags)

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newUsersCmd(app),
		newVersionCmd(app),
	)
	return root
}

// loadConfig resolves the configuration for cmd: defaults, config file,
// .env and environment, then flags.
func (a *App) loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return config.Config{}, &ConfigError{Err: err}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, &ConfigError{Err: err}
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, &ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, &ConfigError{Err: err}
	}
	return cfg, nil
}

// logger builds the process logger. Logs go to ErrOut since stdout carries
// the stdio transport.
func (a *App) logger(cfg config.Config) (*slog.Logger, error) {
	log, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format, a.ErrOut)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return log, nil
}
