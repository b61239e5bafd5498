package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/roster/internal/feed"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestStore(t *testing.T) (*Store, *feed.LocalBroker) {
	t.Helper()
	broker := feed.NewLocalBroker()
	t.Cleanup(func() { broker.Close() })
	return NewStore(setupTestDB(t), broker, nil), broker
}

func mustInsert(t *testing.T, s *Store, r models.Record) string {
	t.Helper()
	id, err := s.Insert(context.Background(), r)
	if err != nil {
		t.Fatalf("failed to insert %T: %v", r, err)
	}
	return id
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		got, err := NextSequence(ctx, tx, "songs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Insert assigns id and sequence", func(t *testing.T) {
		s, _ := setupTestStore(t)

		first := models.NewAccount("Ann", "@ann", "pw", models.RoleLeader)
		second := models.NewAccount("Ann Two", "@ANN", "pw", models.RoleMusician)
		mustInsert(t, s, first)
		mustInsert(t, s, second)

		if first.ID() == "" || first.ID() == second.ID() {
			t.Fatalf("expected distinct ids, got %q and %q", first.ID(), second.ID())
		}
		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Insert rejects invalid records", func(t *testing.T) {
		s, _ := setupTestStore(t)

		if _, err := s.Insert(ctx, models.NewSong("", "", "", models.CategoryGeneral)); !errors.Is(err, models.ErrMissingTitle) {
			t.Errorf("expected ErrMissingTitle, got %v", err)
		}
	})

	t.Run("Get round trips every collection", func(t *testing.T) {
		s, _ := setupTestStore(t)

		member := models.NewRosterMember("José Pérez", "", "Musician", "Guitar")
		member.Confirmed = true
		song := models.NewSong("Oceans", "Hillsong", "D", models.CategoryService, "recXXXXXXXXXXXXXXXX", "@mary")
		event := models.NewEvent("Sunday", "2024-05-12", "10:00", models.EventService)
		notice := models.NewNotice("Moved", "Saturday", "Ann", "")
		notice.Pinned = true
		note := models.NewNotification(models.NotifyEvent, "New event", "Ann scheduled Sunday")

		for _, r := range []models.Record{member, song, event, notice, note} {
			mustInsert(t, s, r)
		}

		got, err := s.Get(ctx, models.CollectionMembers, member.ID())
		if err != nil {
			t.Fatalf("failed to get member: %v", err)
		}
		m := got.(*models.RosterMember)
		if m.DisplayName != "José Pérez" || !m.Confirmed || m.Status != models.StatusActive || m.Handle != "" {
			t.Errorf("unexpected member %+v", m)
		}

		got, err = s.Get(ctx, models.CollectionSongs, song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if ids := got.(*models.Song).AssignedIdentifiers; !slices.Equal(ids, []string{"recXXXXXXXXXXXXXXXX", "@mary"}) {
			t.Errorf("unexpected assignments %v", ids)
		}

		got, err = s.Get(ctx, models.CollectionEvents, event.ID())
		if err != nil {
			t.Fatalf("failed to get event: %v", err)
		}
		if e := got.(*models.Event); e.Date != "2024-05-12" || e.Kind != models.EventService {
			t.Errorf("unexpected event %+v", e)
		}

		got, err = s.Get(ctx, models.CollectionNotices, notice.ID())
		if err != nil {
			t.Fatalf("failed to get notice: %v", err)
		}
		if n := got.(*models.Notice); !n.Pinned || n.Category != "General" {
			t.Errorf("unexpected notice %+v", n)
		}

		got, err = s.Get(ctx, models.CollectionNotifications, note.ID())
		if err != nil {
			t.Fatalf("failed to get notification: %v", err)
		}
		if n := got.(*models.Notification); n.Read || n.Kind != models.NotifyEvent {
			t.Errorf("unexpected notification %+v", n)
		}
	})

	t.Run("List is ordered by sequence", func(t *testing.T) {
		s, _ := setupTestStore(t)

		names := []string{"Carl", "Ana", "Bruno"}
		for _, name := range names {
			mustInsert(t, s, models.NewRosterMember(name, "", "Musician", ""))
		}

		members, err := s.Members(ctx)
		if err != nil {
			t.Fatalf("failed to list members: %v", err)
		}
		if len(members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(members))
		}
		for i, m := range members {
			if m.DisplayName != names[i] {
				t.Errorf("position %d: expected %s, got %s", i, names[i], m.DisplayName)
			}
		}
	})

	t.Run("Update merges fields", func(t *testing.T) {
		s, _ := setupTestStore(t)

		song := models.NewSong("Oceans", "", "", models.CategoryGeneral, "old")
		mustInsert(t, s, song)

		err := s.Update(ctx, models.CollectionSongs, song.ID(), models.Fields{
			models.FieldAssignedIdentifiers: []string{"@carl", "@mary"},
			models.FieldCategory:            models.CategoryRehearsal,
		})
		if err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		songs, err := s.Songs(ctx)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		got := songs[0]
		if !slices.Equal(got.AssignedIdentifiers, []string{"@carl", "@mary"}) {
			t.Errorf("unexpected assignments %v", got.AssignedIdentifiers)
		}
		if got.Category != models.CategoryRehearsal || got.Title != "Oceans" {
			t.Errorf("unexpected song %+v", got)
		}
		if got.Sequence() != song.Sequence() {
			t.Errorf("update should not change sequence")
		}
	})

	t.Run("Delete hides the record", func(t *testing.T) {
		s, _ := setupTestStore(t)

		a := models.NewAccount("Ann", "@ann", "pw", models.RoleMusician)
		mustInsert(t, s, a)

		if err := s.Delete(ctx, models.CollectionAccounts, a.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		accounts, err := s.Accounts(ctx)
		if err != nil {
			t.Fatalf("failed to list accounts: %v", err)
		}
		if len(accounts) != 0 {
			t.Errorf("expected deleted account to be hidden, got %d", len(accounts))
		}
	})

	t.Run("writes publish change events", func(t *testing.T) {
		s, broker := setupTestStore(t)

		events, stop, err := broker.Listen(ctx)
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer stop()

		n := models.NewNotice("Hello", "", "Ann", "")
		mustInsert(t, s, n)
		if err := s.Update(ctx, models.CollectionNotices, n.ID(), models.Fields{models.FieldPinned: true}); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if err := s.Delete(ctx, models.CollectionNotices, n.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		for _, want := range []feed.Op{feed.OpInsert, feed.OpUpdate, feed.OpDelete} {
			select {
			case e := <-events:
				if e.Op != want || e.ID != n.ID() || e.Collection != models.CollectionNotices {
					t.Errorf("expected %s event for %s, got %+v", want, n.ID(), e)
				}
			case <-time.After(time.Second):
				t.Fatalf("timed out waiting for %s event", want)
			}
		}
	})
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			s, _ := setupTestStore(t)

			err := s.Update(ctx, models.CollectionMembers, "missing", models.Fields{models.FieldHandle: "@x"})
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			s, _ := setupTestStore(t)

			m := models.NewRosterMember("Ana", "", "Musician", "")
			mustInsert(t, s, m)
			if err := s.Delete(ctx, models.CollectionMembers, m.ID()); err != nil {
				t.Fatalf("failed to delete: %v", err)
			}

			err := s.Update(ctx, models.CollectionMembers, m.ID(), models.Fields{models.FieldHandle: "@ana"})
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for deleted record, got %v", err)
			}
		})

		t.Run("UnknownField", func(t *testing.T) {
			s, _ := setupTestStore(t)

			m := models.NewRosterMember("Ana", "", "Musician", "")
			mustInsert(t, s, m)

			err := s.Update(ctx, models.CollectionMembers, m.ID(), models.Fields{"sequence": 99})
			if !errors.Is(err, ErrUnknownField) {
				t.Errorf("expected ErrUnknownField, got %v", err)
			}
		})

		t.Run("InvalidValue", func(t *testing.T) {
			s, _ := setupTestStore(t)

			m := models.NewRosterMember("Ana", "", "Musician", "")
			mustInsert(t, s, m)

			err := s.Update(ctx, models.CollectionMembers, m.ID(), models.Fields{models.FieldHandle: 3.5})
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("expected ErrInvalidValue, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Twice", func(t *testing.T) {
			s, _ := setupTestStore(t)

			a := models.NewAccount("Ann", "@ann", "pw", models.RoleMusician)
			mustInsert(t, s, a)

			if err := s.Delete(ctx, models.CollectionAccounts, a.ID()); err != nil {
				t.Fatalf("first delete failed: %v", err)
			}
			if err := s.Delete(ctx, models.CollectionAccounts, a.ID()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			s, _ := setupTestStore(t)

			if _, err := s.Get(ctx, models.CollectionSongs, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		s, _ := setupTestStore(t)

		if _, err := s.List(ctx, models.Collection("users")); !errors.Is(err, models.ErrUnknownCollection) {
			t.Errorf("expected ErrUnknownCollection, got %v", err)
		}
	})
}
