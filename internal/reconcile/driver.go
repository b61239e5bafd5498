package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// DefaultGracePeriod bounds how long the driver waits for the first accounts snapshot.
const DefaultGracePeriod = 5 * time.Second

// Source delivers full collection snapshots.
type Source interface {
	Subscribe(ctx context.Context, c models.Collection) (<-chan models.Snapshot, func(), error)
}

// Options configures a [Driver].
type Options struct {
	GracePeriod time.Duration
	Logger      *log.Logger
	// Reports, when set, receives every pass report. Sends never block.
	Reports chan<- PassReport
	Clock   func() time.Time
}

// Driver runs reconciliation passes against a [State]. Passes never overlap.
type Driver struct {
	writer  Writer
	state   *State
	opts    Options
	logger  *log.Logger
	passMu  sync.Mutex
	mu      sync.RWMutex
	expired bool
	last    *PassReport
}

// NewDriver creates a [Driver] that writes through w and reads from state.
func NewDriver(w Writer, state *State, opts Options) *Driver {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Driver{
		writer: w,
		state:  state,
		opts:   opts,
		logger: shared.WithLogger(opts.Logger, "component", "reconcile"),
	}
}

// State returns the state the driver reads from.
func (d *Driver) State() *State { return d.state }

// ExpireGrace ends the initial-load grace period. A driver still waiting for
// accounts then reports [GateEmpty] instead of [GateLoading]; it never writes.
func (d *Driver) ExpireGrace() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expired = true
}

// Gate evaluates the readiness gate against the current state.
func (d *Driver) Gate() Gate {
	if !d.state.Loaded(models.CollectionAccounts) {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.expired {
			return GateEmpty
		}
		return GateLoading
	}
	if len(d.state.Records(models.CollectionAccounts)) == 0 {
		return GateEmpty
	}
	return GateOpen
}

// Last returns the most recent pass report.
func (d *Driver) Last() (PassReport, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return PassReport{}, false
	}
	return *d.last, true
}

// Pass runs one reconciliation pass over the current state. Write failures are
// recorded in the report and logged, never returned.
func (d *Driver) Pass(ctx context.Context) PassReport {
	d.passMu.Lock()
	defer d.passMu.Unlock()

	report := PassReport{
		Version: d.state.Version(),
		Gate:    d.Gate(),
		Started: d.opts.Clock(),
	}

	if report.Gate != GateOpen {
		report.Skipped = true
		report.Finished = d.opts.Clock()
		d.logger.Debug("reconciliation suspended", "gate", report.Gate, "version", report.Version)
		d.finish(report)
		return report
	}

	accounts := d.state.Records(models.CollectionAccounts)
	res := Collapse(ctx, d.writer, models.CollectionAccounts, accounts, AccountKey)
	report.Phases = append(report.Phases, PhaseReport{Phase: PhaseCollapseAccounts, Results: res})
	liveAccounts := without[*models.Account](accounts, res)

	membersLoaded := d.state.Loaded(models.CollectionMembers)
	songsLoaded := d.state.Loaded(models.CollectionSongs)

	var liveMembers []*models.RosterMember
	if membersLoaded {
		members := d.state.Records(models.CollectionMembers)
		res := Collapse(ctx, d.writer, models.CollectionMembers, members, MemberKey)
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseCollapseMembers, Results: res})
		liveMembers = without[*models.RosterMember](members, res)
	} else {
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseCollapseMembers, Skipped: true})
	}

	if membersLoaded {
		matcher := identity.NewMatcher(liveAccounts, liveMembers)
		res := BackfillHandles(ctx, d.writer, matcher, liveMembers)
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseBackfillHandles, Results: res})
		liveMembers = withHandles(liveMembers, res)
	} else {
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseBackfillHandles, Skipped: true})
	}

	if membersLoaded && songsLoaded {
		matcher := identity.NewMatcher(liveAccounts, liveMembers)
		songs := d.state.Songs()
		res := CanonicalizeAssignments(ctx, d.writer, matcher, songs)
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseCanonicalize, Results: res})
	} else {
		report.Phases = append(report.Phases, PhaseReport{Phase: PhaseCanonicalize, Skipped: true})
	}

	report.Finished = d.opts.Clock()
	d.log(report)
	d.finish(report)
	return report
}

func (d *Driver) log(report PassReport) {
	for _, res := range report.Results() {
		switch {
		case res.OK():
		case res.Benign():
			d.logger.Debug("record already gone", "op", res.Op, "collection", res.Collection, "id", res.ID)
		default:
			d.logger.Warn("reconciliation write failed", "op", res.Op, "collection", res.Collection, "id", res.ID, "error", res.Err)
		}
	}

	if report.Writes() == 0 {
		d.logger.Debug("collections converged", "version", report.Version)
		return
	}
	d.logger.Info(
		"reconciliation pass complete",
		"version", report.Version,
		"deleted", report.Deletes(),
		"updated", report.Updates(),
		"failed", report.Failures(),
		"took", report.Duration(),
	)
}

func (d *Driver) finish(report PassReport) {
	d.mu.Lock()
	d.last = &report
	d.mu.Unlock()

	if d.opts.Reports == nil {
		return
	}
	select {
	case d.opts.Reports <- report:
	default:
	}
}

// without narrows records to T, dropping those a collapse phase asked to delete.
func without[T models.Record](records []models.Record, deleted []WriteResult) []T {
	gone := make(map[string]struct{}, len(deleted))
	for _, res := range deleted {
		gone[res.ID] = struct{}{}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if _, ok := gone[r.ID()]; ok {
			continue
		}
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// withHandles returns members with successful backfills applied to copies, so the
// canonicalize phase sees handles written earlier in the same pass.
func withHandles(members []*models.RosterMember, results []WriteResult) []*models.RosterMember {
	handles := make(map[string]string)
	for _, res := range results {
		if !res.OK() {
			continue
		}
		if h, ok := res.Fields[models.FieldHandle].(string); ok {
			handles[res.ID] = h
		}
	}
	if len(handles) == 0 {
		return members
	}

	out := make([]*models.RosterMember, len(members))
	for i, m := range members {
		h, ok := handles[m.ID()]
		if !ok {
			out[i] = m
			continue
		}
		cp := *m
		cp.Handle = h
		out[i] = &cp
	}
	return out
}

var ErrSourceClosed = errors.New("snapshot source closed")

// Run subscribes to every collection and runs a pass after each batch of snapshots
// until ctx is cancelled. Snapshots that arrive while a pass runs are coalesced into
// the next one.
func (d *Driver) Run(ctx context.Context, source Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan models.Snapshot)
	var wg sync.WaitGroup
	for _, c := range models.Collections() {
		snaps, stop, err := source.Subscribe(ctx, c)
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to subscribe to %s: %w", c, err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer stop()
			for {
				select {
				case <-ctx.Done():
					return
				case snap, ok := <-snaps:
					if !ok {
						return
					}
					select {
					case merged <- snap:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	closed := make(chan struct{})
	go func() {
		wg.Wait()
		close(closed)
	}()

	grace := time.NewTimer(d.opts.GracePeriod)
	defer grace.Stop()

	d.logger.Info("watching collections", "grace", d.opts.GracePeriod)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-closed:
			if ctx.Err() != nil {
				return nil
			}
			return ErrSourceClosed
		case <-grace.C:
			d.ExpireGrace()
			if !d.state.Loaded(models.CollectionAccounts) {
				d.logger.Warn("accounts not loaded within grace period, reconciliation stays suspended", "grace", d.opts.GracePeriod)
			}
		case snap := <-merged:
			d.state.Apply(snap)
			d.drain(merged)
			d.Pass(ctx)
		}
	}
}

// drain applies any snapshots already waiting so one pass covers them all.
func (d *Driver) drain(merged <-chan models.Snapshot) {
	for {
		select {
		case snap := <-merged:
			d.state.Apply(snap)
		default:
			return
		}
	}
}
