package main

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/formatter"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/tasks"
)

// NotifySend pushes one message through the configured gateway.
func (r *Runner) NotifySend(ctx context.Context, cmd *cli.Command) error {
	gw, err := r.Gateway(ctx)
	if err != nil {
		return err
	}

	msg := notify.Message{
		Title:       cmd.String("title"),
		Body:        cmd.String("body"),
		URL:         cmd.String("url"),
		ExternalIDs: cmd.StringSlice("to"),
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	receipt, err := gw.Deliver(ctx, msg)
	if err != nil {
		return err
	}

	switch {
	case receipt.Queued:
		return r.writePlain("✓ Queued %q\n", msg.Title)
	case receipt.ID != "":
		return r.writePlain("✓ Sent %q (id %s, %d recipients)\n", msg.Title, receipt.ID, receipt.Recipients)
	default:
		return r.writePlain("✓ Sent %q\n", msg.Title)
	}
}

// NotifyRemind plans reminder jobs from the roster and delivers them through a worker pool.
func (r *Runner) NotifyRemind(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	accounts, err := store.Accounts(ctx)
	if err != nil {
		return err
	}
	members, err := store.Members(ctx)
	if err != nil {
		return err
	}
	songs, err := store.Songs(ctx)
	if err != nil {
		return err
	}

	jobs := tasks.PlanReminders(accounts, members, songs)
	r.writePlain("%s\n", tasks.PlannedUpdate(len(jobs)).Message)

	if cmd.Bool("dry-run") {
		for i, job := range jobs {
			r.writePlain("%d. %s (%s): %s\n", i+1, job.Recipient, job.Reason, job.Message.Body)
		}
		return nil
	}
	if len(jobs) == 0 {
		return nil
	}

	gw, err := r.Gateway(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Step > 0 {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := tasks.NewBroadcaster(gw, r.logger).Run(ctx, progress, jobs, tasks.BroadcastOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Delivered %d/%d reminders", result.Delivered, result.Total)
	if result.Failed > 0 {
		return fmt.Errorf("%d reminders failed", result.Failed)
	}
	return nil
}

// NotifyConsume drains the notification queue until interrupted. Messages go to OneSignal
// when it is configured and to the log otherwise.
func (r *Runner) NotifyConsume(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var target notify.Gateway = notify.NewLogGateway(r.logger)
	if cfg := r.config.Notifications.OneSignal; cfg.AppID != "" && cfg.APIKey != "" {
		gw, err := notify.NewOneSignalGateway(cfg, r.httpClient)
		if err != nil {
			return err
		}
		target = gw
	}

	r.logger.Info("consuming notification queue", "queue", r.config.Notifications.Queue.Name)
	return notify.NewConsumer(r.config.Notifications.Queue, target, r.logger).Run(ctx)
}

// NotifyRead marks every stored notification as read.
func (r *Runner) NotifyRead(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	n, err := notify.NewNotifier(store, nil, r.logger).MarkAllRead(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Marked %d notifications read\n", n)
}

// NotifyList renders the notification feed, newest first.
func (r *Runner) NotifyList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	notes, err := store.Notifications(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("unread") {
		notes = slices.DeleteFunc(notes, func(n *models.Notification) bool { return n.Read })
	}
	slices.Reverse(notes)

	data, err := formatter.RenderNotifications(format, &formatter.NotificationExport{Title: "Notifications", Notifications: notes})
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}
