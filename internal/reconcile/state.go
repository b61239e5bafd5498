package reconcile

import (
	"sync"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/repositories"
)

// State holds the latest snapshot of every collection. It is owned by the process
// that runs the driver and shared by reference with readers such as the HTTP server.
type State struct {
	mu        sync.RWMutex
	snapshots map[models.Collection]models.Snapshot
	loaded    map[models.Collection]bool
	version   uint64
}

func NewState() *State {
	return &State{
		snapshots: make(map[models.Collection]models.Snapshot),
		loaded:    make(map[models.Collection]bool),
	}
}

// Apply replaces a collection wholesale with snap and marks it loaded.
func (s *State) Apply(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.Collection] = snap
	s.loaded[snap.Collection] = true
	s.version++
}

// Loaded reports whether a snapshot of c has been applied.
func (s *State) Loaded(c models.Collection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[c]
}

// Version counts applied snapshots across all collections.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Records returns the current records of c.
func (s *State) Records(c models.Collection) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[c].Records
}

func (s *State) Accounts() []*models.Account {
	return repositories.Narrow[*models.Account](s.Records(models.CollectionAccounts))
}

func (s *State) Members() []*models.RosterMember {
	return repositories.Narrow[*models.RosterMember](s.Records(models.CollectionMembers))
}

func (s *State) Songs() []*models.Song {
	return repositories.Narrow[*models.Song](s.Records(models.CollectionSongs))
}

// Counts returns the number of records per loaded collection.
func (s *State) Counts() map[models.Collection]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Collection]int, len(s.snapshots))
	for c, snap := range s.snapshots {
		counts[c] = snap.Len()
	}
	return counts
}
