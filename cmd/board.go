package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/formatter"
	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/repositories"
	"github.com/desertthunder/roster/internal/shared"
	"github.com/desertthunder/roster/internal/team"
)

// leader resolves --as to a leader account. An empty flag means no announcement.
func (r *Runner) leader(ctx context.Context, cmd *cli.Command, store *repositories.Store) (*models.Account, error) {
	handle := cmd.String("as")
	if handle == "" {
		return nil, nil
	}

	accounts, err := store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	acct, ok := identity.NewMatcher(accounts, nil).AccountByHandle(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, handle)
	}
	if !acct.IsLeader() {
		return nil, fmt.Errorf("%w: %s is not a leader", shared.ErrForbidden, acct.Handle)
	}
	return acct, nil
}

// publish inserts a record and, when a leader published it, announces it.
func (r *Runner) publish(ctx context.Context, cmd *cli.Command, rec models.Record, kind models.NotificationKind, title string) (string, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return "", err
	}

	leader, err := r.leader(ctx, cmd, store)
	if err != nil {
		return "", err
	}

	id, err := store.Insert(ctx, rec)
	if err != nil {
		return "", err
	}

	if leader != nil {
		gw, err := r.Gateway(ctx)
		if err != nil {
			r.logger.Warn("notification gateway unavailable, announcing to the log only", "error", err)
		}
		if _, err := notify.NewNotifier(store, gw, r.logger).Announce(ctx, leader, kind, title); err != nil {
			r.logger.Warn("announcement failed", "error", err)
		}
	}
	return id, nil
}

// SongsAdd adds a song to the repertoire.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	song := models.NewSong(
		cmd.String("title"),
		cmd.String("artist"),
		cmd.String("key"),
		models.SongCategory(cmd.String("category")),
		cmd.StringSlice("assign")...,
	)
	song.Notes = cmd.String("notes")
	song.ReferenceURL = cmd.String("url")

	id, err := r.publish(ctx, cmd, song, models.NotifySong, song.Title)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added song %s (%s)\n", song.Title, id)
}

// SongsList renders the song list, optionally only what is assigned to one person.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

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

	matcher := identity.NewMatcher(accounts, members)
	export := &formatter.SongExport{Title: "Songs", Songs: songs, Matcher: matcher}

	if who := cmd.String("for"); who != "" {
		id, ok := matcher.Resolve(who)
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrMemberNotFound, who)
		}
		export.Songs = team.AssignedSongs(id, songs)
		export.Title = fmt.Sprintf("Songs for %s", who)
	}

	data, err := formatter.RenderSongs(format, export)
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// NoticesAdd posts a notice.
func (r *Runner) NoticesAdd(ctx context.Context, cmd *cli.Command) error {
	notice := models.NewNotice(cmd.String("title"), cmd.String("content"), cmd.String("as"), cmd.String("category"))
	notice.Pinned = cmd.Bool("pinned")

	id, err := r.publish(ctx, cmd, notice, models.NotifyNotice, notice.Title)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Posted notice %s (%s)\n", notice.Title, id)
}

// EventsAdd schedules an event.
func (r *Runner) EventsAdd(ctx context.Context, cmd *cli.Command) error {
	event := models.NewEvent(cmd.String("title"), cmd.String("date"), cmd.String("time"), models.EventKind(cmd.String("kind")))
	event.Location = cmd.String("location")

	id, err := r.publish(ctx, cmd, event, models.NotifyEvent, event.Title)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Scheduled %s on %s (%s)\n", event.Title, event.Date, id)
}

// findRecord matches ref against record ids, then against titles ignoring case.
func findRecord[T models.Record](items []T, ref string, title func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%w: id or title", shared.ErrMissingArgument)
	}

	for _, it := range items {
		if it.ID() == ref {
			return it, nil
		}
	}

	var found []T
	for _, it := range items {
		if strings.EqualFold(title(it), ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return zero, fmt.Errorf("%w: %s", repositories.ErrNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return zero, fmt.Errorf("%w: %d records titled %q, use the id", shared.ErrInvalidArgument, len(found), ref)
	}
}

// editable opens the store and requires --as to name a leader.
func (r *Runner) editable(ctx context.Context, cmd *cli.Command) (*repositories.Store, *models.Account, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, nil, err
	}
	leader, err := r.leader(ctx, cmd, store)
	if err != nil {
		return nil, nil, err
	}
	if leader == nil {
		return nil, nil, fmt.Errorf("%w: --as <leader handle>", shared.ErrMissingArgument)
	}
	return store, leader, nil
}

// SongsUpdate edits a song. Only flags that are given change.
func (r *Runner) SongsUpdate(ctx context.Context, cmd *cli.Command) error {
	store, leader, err := r.editable(ctx, cmd)
	if err != nil {
		return err
	}
	songs, err := store.Songs(ctx)
	if err != nil {
		return err
	}
	song, err := findRecord(songs, cmd.StringArg("song"), func(s *models.Song) string { return s.Title })
	if err != nil {
		return err
	}

	fields := models.Fields{}
	for flag, apply := range map[string]func(string){
		"title":    func(v string) { song.Title = v; fields[models.FieldTitle] = v },
		"artist":   func(v string) { song.Artist = v; fields[models.FieldArtist] = v },
		"key":      func(v string) { song.Key = v; fields[models.FieldKey] = v },
		"category": func(v string) { song.Category = models.SongCategory(v); fields[models.FieldCategory] = song.Category },
		"notes":    func(v string) { song.Notes = v; fields[models.FieldNotes] = v },
		"url":      func(v string) { song.ReferenceURL = v; fields[models.FieldReferenceURL] = v },
	} {
		if cmd.IsSet(flag) {
			apply(cmd.String(flag))
		}
	}
	if cmd.IsSet("assign") {
		song.AssignedIdentifiers = cmd.StringSlice("assign")
		fields[models.FieldAssignedIdentifiers] = song.AssignedIdentifiers
	}

	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}
	if err := song.Validate(); err != nil {
		return err
	}
	if err := store.Update(ctx, models.CollectionSongs, song.ID(), fields); err != nil {
		return err
	}

	r.logger.Info("song updated", "song", song.ID(), "by", leader.Handle)
	return r.writePlain("✓ Updated song %s (%s)\n", song.Title, song.ID())
}

// SongsDelete removes a song.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	store, leader, err := r.editable(ctx, cmd)
	if err != nil {
		return err
	}
	songs, err := store.Songs(ctx)
	if err != nil {
		return err
	}
	song, err := findRecord(songs, cmd.StringArg("song"), func(s *models.Song) string { return s.Title })
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, models.CollectionSongs, song.ID()); err != nil {
		return err
	}

	r.logger.Info("song deleted", "song", song.ID(), "by", leader.Handle)
	return r.writePlain("✓ Deleted song %s\n", song.Title)
}

// NoticesList renders the notice board, pinned notices first.
func (r *Runner) NoticesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	notices, err := store.Notices(ctx)
	if err != nil {
		return err
	}

	slices.SortStableFunc(notices, func(a, b *models.Notice) int {
		switch {
		case a.Pinned == b.Pinned:
			return 0
		case a.Pinned:
			return -1
		default:
			return 1
		}
	})

	data, err := formatter.RenderNotices(format, &formatter.NoticeExport{Title: "Notices", Notices: notices})
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// NoticesDelete removes a notice.
func (r *Runner) NoticesDelete(ctx context.Context, cmd *cli.Command) error {
	store, leader, err := r.editable(ctx, cmd)
	if err != nil {
		return err
	}
	notices, err := store.Notices(ctx)
	if err != nil {
		return err
	}
	notice, err := findRecord(notices, cmd.StringArg("notice"), func(n *models.Notice) string { return n.Title })
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, models.CollectionNotices, notice.ID()); err != nil {
		return err
	}

	r.logger.Info("notice deleted", "notice", notice.ID(), "by", leader.Handle)
	return r.writePlain("✓ Deleted notice %s\n", notice.Title)
}

// EventsList renders the calendar in date order.
func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	events, err := store.Events(ctx)
	if err != nil {
		return err
	}

	slices.SortStableFunc(events, func(a, b *models.Event) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})

	data, err := formatter.RenderEvents(format, &formatter.EventExport{Title: "Events", Events: events})
	if err != nil {
		return err
	}
	return r.emit(cmd.String("output"), data)
}

// EventsDelete removes an event.
func (r *Runner) EventsDelete(ctx context.Context, cmd *cli.Command) error {
	store, leader, err := r.editable(ctx, cmd)
	if err != nil {
		return err
	}
	events, err := store.Events(ctx)
	if err != nil {
		return err
	}
	event, err := findRecord(events, cmd.StringArg("event"), func(e *models.Event) string { return e.Title })
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, models.CollectionEvents, event.ID()); err != nil {
		return err
	}

	r.logger.Info("event deleted", "event", event.ID(), "by", leader.Handle)
	return r.writePlain("✓ Deleted event %s\n", event.Title)
}
