package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/config"
	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/resolver"
	"github.com/roach88/gizmo/internal/store"
)

// app is the set of long-lived components a database-backed command needs.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *store.Store
	engine    *engine.Engine
	inventory *engine.Inventory
}

// loadConfig reads the environment and applies the --db flag on top.
func loadConfig(cmd *cobra.Command, database string) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = database
		if err := cfg.Validate(); err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
		}
	}
	return cfg, nil
}

// newLogger builds the text logger used by every command. --verbose forces
// debug level regardless of GIZMO_LOG_LEVEL.
func newLogger(w io.Writer, cfg config.Config, verbose bool) *slog.Logger {
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp opens the configured store and builds the engine and inventory
// on top of it. Callers must Close the returned app.
func openApp(cmd *cobra.Command, opts *RootOptions, database string) (*app, error) {
	cfg, err := loadConfig(cmd, database)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)

	logger.Debug("opening database", "dsn", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		engine:    engine.New(resolver.New(st, st), st, engine.WithLogger(logger)),
		inventory: engine.NewInventory(st, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// addDatabaseFlag registers --db on cmd. The default comes from the
// environment at run time, so the flag only overrides when set.
func addDatabaseFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "db", "",
		"SQLite path or postgres:// DSN (default $"+config.EnvDatabase+" or "+config.DefaultDatabase+")")
}
