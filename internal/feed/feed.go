// Package feed carries change notifications from the store to its subscribers.
//
// Events are hints, not payloads: a subscriber that receives one re-reads the
// whole collection. Dropping an event is safe as long as a later one for the same
// collection is delivered, which is why brokers never block on a slow listener.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/desertthunder/roster/internal/models"
)

// Op is the kind of write that produced an event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event announces a successful write to one record.
type Event struct {
	Collection models.Collection `json:"collection"`
	ID         string            `json:"id"`
	Op         Op                `json:"op"`
}

// Broker fans change events out to listeners.
type Broker interface {
	Publish(ctx context.Context, e Event) error
	// Listen registers a listener. The returned func unregisters it and closes the channel.
	Listen(ctx context.Context) (<-chan Event, func(), error)
	Close() error
}

var ErrBrokerClosed = errors.New("broker closed")

// listenerBuffer bounds how far a listener may fall behind before events are dropped.
const listenerBuffer = 64

// LocalBroker delivers events to listeners in the same process.
type LocalBroker struct {
	mu        sync.Mutex
	next      int
	listeners map[int]chan Event
	closed    bool
}

// NewLocalBroker creates an in-process [LocalBroker].
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{listeners: make(map[int]chan Event)}
}

// Publish sends e to every listener without blocking.
func (b *LocalBroker) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for _, ch := range b.listeners {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Listen(ctx context.Context) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	id := b.next
	b.next++
	ch := make(chan Event, listenerBuffer)
	b.listeners[id] = ch

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.listeners[id]; ok {
				delete(b.listeners, id)
				close(c)
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	return ch, stop, nil
}

// Close unregisters every listener. Later calls to Publish and Listen fail.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.listeners {
		delete(b.listeners, id)
		close(ch)
	}
	return nil
}
