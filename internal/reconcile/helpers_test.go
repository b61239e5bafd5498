package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/repositories"
)

type call struct {
	Op         Op
	Collection models.Collection
	ID         string
	Fields     models.Fields
}

// recordingWriter records writes and fails the ids it is told to.
type recordingWriter struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{fail: make(map[string]error)}
}

func (w *recordingWriter) Update(_ context.Context, c models.Collection, id string, fields models.Fields) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call{Op: OpUpdate, Collection: c, ID: id, Fields: fields})
	return w.fail[id]
}

func (w *recordingWriter) Delete(_ context.Context, c models.Collection, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call{Op: OpDelete, Collection: c, ID: id})
	return w.fail[id]
}

func (w *recordingWriter) Calls() []call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]call(nil), w.calls...)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", repositories.ErrNotFound, id)
}

func acct(seq int, name, handle string) *models.Account {
	a := models.NewAccount(name, handle, "pw", models.RoleMusician)
	a.SetID(fmt.Sprintf("acct-%d", seq))
	a.SetSequence(seq)
	return a
}

func mem(id string, seq int, name, handle string) *models.RosterMember {
	m := models.NewRosterMember(name, handle, "Musician", "")
	m.SetID(id)
	m.SetSequence(seq)
	return m
}

func song(id string, seq int, assigned ...string) *models.Song {
	s := models.NewSong("Song "+id, "", "", models.CategoryService, assigned...)
	s.SetID(id)
	s.SetSequence(seq)
	return s
}

func records[T models.Record](items ...T) []models.Record {
	out := make([]models.Record, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func snapshot[T models.Record](c models.Collection, items ...T) models.Snapshot {
	return models.Snapshot{Collection: c, Records: records(items...)}
}
