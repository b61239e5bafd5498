package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/reconcile"
	"github.com/desertthunder/roster/internal/shared"
	"github.com/desertthunder/roster/internal/ui"
)

type reportJSON struct {
	Version  uint64              `json:"version"`
	Gate     string              `json:"gate"`
	Skipped  bool                `json:"skipped"`
	Deleted  int                 `json:"deleted"`
	Updated  int                 `json:"updated"`
	Failed   int                 `json:"failed"`
	Failures []map[string]string `json:"failures,omitempty"`
}

// ReconcileRun loads the current data and runs one pass.
func (r *Runner) ReconcileRun(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	state := reconcile.NewState()
	for _, c := range []models.Collection{models.CollectionAccounts, models.CollectionMembers, models.CollectionSongs} {
		snap, err := store.Snapshot(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", c, err)
		}
		state.Apply(snap)
	}

	driver := reconcile.NewDriver(store, state, reconcile.Options{
		GracePeriod: r.config.Reconcile.Grace(),
		Logger:      r.logger,
	})
	report := driver.Pass(ctx)

	if cmd.Bool("json") {
		out := reportJSON{
			Version: report.Version,
			Gate:    report.Gate.String(),
			Skipped: report.Skipped,
			Deleted: report.Deletes(),
			Updated: report.Updates(),
			Failed:  report.Failures(),
		}
		for _, res := range report.Results() {
			if !res.OK() && !res.Benign() {
				out.Failures = append(out.Failures, map[string]string{
					"op":         string(res.Op),
					"collection": string(res.Collection),
					"id":         res.ID,
					"error":      res.Err.Error(),
				})
			}
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Reconciliation")
	r.writePlain("%s\n", report.Summary())
	for _, p := range report.Phases {
		switch {
		case p.Skipped:
			r.writePlain("  %-26s skipped (collection not loaded)\n", p.Phase)
		default:
			r.writePlain("  %-26s %d writes\n", p.Phase, len(p.Results))
		}
	}
	for _, res := range report.Results() {
		if !res.OK() && !res.Benign() {
			r.writePlain("  ✗ %s\n", res)
		}
	}
	return nil
}

// ReconcileWatch subscribes to the store and reconciles after every change until interrupted.
func (r *Runner) ReconcileWatch(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	useTUI := cmd.Bool("tui")
	if useTUI {
		// Redirect logs to file to avoid interfering with TUI rendering
		fileLogger, err := shared.NewFileLogger("./tmp/roster-watch.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	grace := r.config.Reconcile.Grace()
	if d := cmd.Duration("grace"); d > 0 {
		grace = d
	}

	reports := make(chan reconcile.PassReport, 16)
	driver := reconcile.NewDriver(store, reconcile.NewState(), reconcile.Options{
		GracePeriod: grace,
		Logger:      r.logger,
		Reports:     reports,
	})

	if !useTUI {
		return driver.Run(ctx, store)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- driver.Run(ctx, store)
		cancel()
	}()

	p := tea.NewProgram(ui.NewModel(ctx, driver, reports))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	cancel()
	return <-runErr
}
