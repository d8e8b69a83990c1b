package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/gizmo/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the function and inventory HTTP API.

Settings come from GIZMO_* environment variables; --db and --addr
override them. SIGINT and SIGTERM trigger a graceful shutdown.

Example:
  gizmo serve --db ./gizmo.db --addr :8080
  GIZMO_DATABASE=postgres://localhost/gizmo gizmo serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	addDatabaseFlag(cmd, &opts.Database)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $GIZMO_ADDR or :8080)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	a, err := openApp(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("addr") {
		a.cfg.Addr = opts.Addr
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	handler := httpapi.New(a.engine, a.inventory, a.store, a.logger).Handler()
	a.logger.Info("serving", "addr", a.cfg.Addr, "dialect", a.store.Dialect().String())

	err = httpapi.Run(ctx, a.logger, httpapi.Config{
		Service:         "gizmo",
		Addr:            a.cfg.Addr,
		ShutdownTimeout: a.cfg.ShutdownTimeout,
	}, handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "server error", err)
	}

	a.logger.Info("server stopped gracefully")
	return nil
}
