package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/reconcile"
	"github.com/desertthunder/roster/internal/server"
)

// Serve runs the HTTP API and a reconciliation driver until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	var gw notify.Gateway
	if g, err := r.Gateway(ctx); err != nil {
		r.logger.Warn("notification gateway unavailable; /api/send-notification will fail", "error", err)
	} else {
		gw = g
	}

	driver := reconcile.NewDriver(store, reconcile.NewState(), reconcile.Options{
		GracePeriod: r.config.Reconcile.Grace(),
		Logger:      r.logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- driver.Run(ctx, store)
	}()

	cfg := r.config.Server
	if p := cmd.Int("port"); p > 0 {
		cfg.Port = p
	}

	srv := server.New(server.Options{Gateway: gw, Status: driver, Logger: r.logger})

	serveErr := srv.Start(ctx, cfg.Addr())
	cancel()
	if err := <-runErr; err != nil && serveErr == nil {
		return fmt.Errorf("reconciliation stopped: %w", err)
	}
	return serveErr
}
