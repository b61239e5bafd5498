package team

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/repositories"
	"github.com/desertthunder/roster/internal/shared"
)

func setupService(t *testing.T) (*Service, *repositories.Store) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, shared.RunMigrations(db))

	logger := shared.NewLogger(io.Discard)
	store := repositories.NewStore(db, nil, logger)
	return NewService(store, logger), store
}

func register(t *testing.T, s *Service, name, handle string, role models.Role) (*models.Account, *models.RosterMember) {
	t.Helper()
	a, m, err := s.Register(context.Background(), RegisterInput{DisplayName: name, Handle: handle, Password: "secret", Role: role})
	require.NoError(t, err)
	return a, m
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and member", func(t *testing.T) {
		s, store := setupService(t)

		a, m, err := s.Register(ctx, RegisterInput{DisplayName: "Ann Lee", Handle: "ann", Password: "pw", Role: models.RoleLeader, Instrument: "Piano"})
		require.NoError(t, err)

		assert.Equal(t, "@ann", a.Handle)
		assert.Equal(t, "@ann", m.Handle)
		assert.Equal(t, "Leader", m.RoleLabel)
		assert.Equal(t, models.StatusActive, m.Status)

		accounts, err := store.Accounts(ctx)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
		members, err := store.Members(ctx)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("handles collide modulo case and prefix", func(t *testing.T) {
		s, _ := setupService(t)
		register(t, s, "Ann", "@Ann", models.RoleMusician)

		for _, h := range []string{"ann", "@ANN", " @ann "} {
			_, _, err := s.Register(ctx, RegisterInput{DisplayName: "Other", Handle: h, Role: models.RoleMusician})
			assert.ErrorIs(t, err, ErrHandleTaken, "handle %q", h)
		}
	})

	t.Run("requires handle and name", func(t *testing.T) {
		s, _ := setupService(t)

		_, _, err := s.Register(ctx, RegisterInput{DisplayName: "Ann", Handle: "@"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, _, err = s.Register(ctx, RegisterInput{Handle: "@ann"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, store := setupService(t)
	register(t, s, "Ann", "@ann", models.RoleMusician)

	a, err := s.Authenticate(ctx, "ANN", "secret")
	require.NoError(t, err)
	assert.Equal(t, "@ann", a.Handle)

	_, err = s.Authenticate(ctx, "@ann", "wrong")
	assert.ErrorIs(t, err, shared.ErrAuthFailed)

	legacy := models.NewAccount("Old", "@old", "", models.RoleMusician)
	_, err = store.Insert(ctx, legacy)
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "old", DefaultPassword)
	assert.NoError(t, err)
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("leader removes musician and account", func(t *testing.T) {
		s, store := setupService(t)
		leader, _ := register(t, s, "Ann", "@ann", models.RoleLeader)
		_, bob := register(t, s, "Bob", "@bob", models.RoleMusician)

		require.NoError(t, s.RemoveMember(ctx, leader, bob.ID()))

		accounts, err := store.Accounts(ctx)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
		members, err := store.Members(ctx)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("musicians cannot remove", func(t *testing.T) {
		s, _ := setupService(t)
		musician, _ := register(t, s, "Bob", "@bob", models.RoleMusician)
		_, carl := register(t, s, "Carl", "@carl", models.RoleMusician)

		assert.ErrorIs(t, s.RemoveMember(ctx, musician, carl.ID()), shared.ErrForbidden)
		assert.ErrorIs(t, s.RemoveMember(ctx, nil, carl.ID()), shared.ErrForbidden)
	})

	t.Run("leadership roles are protected", func(t *testing.T) {
		s, store := setupService(t)
		leader, _ := register(t, s, "Ann", "@ann", models.RoleLeader)

		for _, label := range []string{"Líder de alabanza", "Vice President", "Presidente"} {
			m := models.NewRosterMember("Protected "+label, "", label, "")
			_, err := store.Insert(ctx, m)
			require.NoError(t, err)
			assert.ErrorIs(t, s.RemoveMember(ctx, leader, m.ID()), ErrProtectedMember, label)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		s, _ := setupService(t)
		leader, _ := register(t, s, "Ann", "@ann", models.RoleLeader)

		assert.ErrorIs(t, s.RemoveMember(ctx, leader, "missing"), shared.ErrMemberNotFound)
	})
}

func TestProfileAndConfirmation(t *testing.T) {
	ctx := context.Background()
	s, store := setupService(t)
	ann, member := register(t, s, "Ann", "@ann", models.RoleMusician)

	name, instrument := "Ann Lee", "Drums"
	require.NoError(t, s.UpdateProfile(ctx, ann, ProfileUpdate{DisplayName: &name, Instrument: &instrument}))

	got, err := store.Get(ctx, models.CollectionMembers, member.ID())
	require.NoError(t, err)
	synced := got.(*models.RosterMember)
	assert.Equal(t, "Ann Lee", synced.DisplayName)
	assert.Equal(t, "Drums", synced.Instrument)

	confirmed, err := s.ConfirmParticipation(ctx, ann, true)
	require.NoError(t, err)
	assert.Equal(t, member.ID(), confirmed.ID())

	members, err := store.Members(ctx)
	require.NoError(t, err)
	assert.True(t, members[0].Confirmed)

	stranger := models.NewAccount("Nobody", "@nobody", "", models.RoleMusician)
	_, err = s.ConfirmParticipation(ctx, stranger, true)
	assert.ErrorIs(t, err, shared.ErrMemberNotFound)

	require.NoError(t, s.DeleteAccount(ctx, ann))
	members, err = store.Members(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAssignedSongs(t *testing.T) {
	ann := models.NewAccount("Ann Lee", "@ann", "", models.RoleMusician)
	member := models.NewRosterMember("Ann Lee", "@ann", "Musician", "")
	member.SetID("recANN00000000000001")
	who := identity.Identity{Account: ann, Member: member}

	songs := []*models.Song{
		models.NewSong("By handle", "", "", models.CategoryService, "@ANN"),
		models.NewSong("By legacy id", "", "", models.CategoryService, "recANN00000000000001"),
		models.NewSong("By name", "", "", models.CategoryService, "ann lee"),
		models.NewSong("Someone else", "", "", models.CategoryService, "@bob", "Bob"),
		models.NewSong("Nobody", "", "", models.CategoryGeneral),
	}

	var titles []string
	for _, s := range AssignedSongs(who, songs) {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"By handle", "By legacy id", "By name"}, titles)
}

func TestSummarize(t *testing.T) {
	members := []*models.RosterMember{
		{RoleLabel: "Musician", Confirmed: true},
		{RoleLabel: "Musician"},
		{RoleLabel: "Leader", Confirmed: true},
	}

	o := Summarize(members)
	assert.Equal(t, Overview{Total: 3, Musicians: 2, Confirmed: 2}, o)
	assert.InDelta(t, 1.0, o.Ratio(), 0.0001)
	assert.Equal(t, 0.0, Summarize(nil).Ratio())
}

func TestProtected(t *testing.T) {
	assert.True(t, Protected("LÍDER"))
	assert.True(t, Protected("Vicepresidente"))
	assert.True(t, Protected("Worship Leader"))
	assert.False(t, Protected("Musician"))
	assert.False(t, Protected(""))
}
