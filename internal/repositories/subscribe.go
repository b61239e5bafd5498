package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/roster/internal/models"
)

var ErrNoFeed = errors.New("store has no change feed")

// Subscribe delivers the current snapshot of c, then a fresh full snapshot after every
// change to c. The channel holds at most one pending snapshot: a newer read replaces an
// undelivered older one. Call the returned func, or cancel ctx, to stop; the channel
// is closed afterwards.
func (s *Store) Subscribe(ctx context.Context, c models.Collection) (<-chan models.Snapshot, func(), error) {
	if _, err := tableFor(c); err != nil {
		return nil, nil, err
	}
	if s.broker == nil {
		return nil, nil, ErrNoFeed
	}

	ctx, cancel := context.WithCancel(ctx)
	events, stopListen, err := s.broker.Listen(ctx)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to listen for %s changes: %w", c, err)
	}

	out := make(chan models.Snapshot, 1)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			stopListen()
		})
	}

	go func() {
		defer close(out)
		defer stop()

		var version uint64
		deliver := func() {
			snap, err := s.Snapshot(ctx, c)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("failed to read snapshot", "collection", c, "error", err)
				}
				return
			}
			version++
			snap.Version = version
			offer(out, snap)
		}

		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.Collection != c {
					continue
				}
				deliver()
			}
		}
	}()

	return out, stop, nil
}

// offer replaces any undelivered snapshot with snap. It must only be called by the
// channel's single producer.
func offer(ch chan models.Snapshot, snap models.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
