// Package team implements roster membership: registration, login, profile edits,
// removal and participation confirmation.
//
// Every account is paired with a roster member. The pairing is found the same way the
// reconciler finds it, by handle and then by normalized display name, so legacy members
// without a handle still resolve.
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/repositories"
	"github.com/desertthunder/roster/internal/shared"
)

var (
	ErrHandleTaken     = errors.New("handle is already in use")
	ErrProtectedMember = errors.New("member holds a leadership role and cannot be removed")
)

// DefaultPassword is accepted for legacy accounts stored without a password.
const DefaultPassword = "password123"

// protectedRoles are substrings of a normalized role label that block removal.
var protectedRoles = []string{"lider", "leader", "president", "vice"}

// Store is the part of the document store the team service needs.
type Store interface {
	Insert(ctx context.Context, r models.Record) (string, error)
	Update(ctx context.Context, c models.Collection, id string, fields models.Fields) error
	Delete(ctx context.Context, c models.Collection, id string) error
	Accounts(ctx context.Context) ([]*models.Account, error)
	Members(ctx context.Context) ([]*models.RosterMember, error)
}

// Service coordinates writes that span accounts and members.
type Service struct {
	store  Store
	logger *log.Logger
}

func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Service{store: store, logger: shared.WithLogger(logger, "component", "team")}
}

// RegisterInput is what a new team member provides.
type RegisterInput struct {
	DisplayName string
	Handle      string
	Password    string
	Role        models.Role
	Instrument  string
}

// Register creates an account and its roster member. The handle is stored with a
// leading "@" and must not collide with an existing one modulo case and prefix.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, *models.RosterMember, error) {
	handle := strings.TrimSpace(in.Handle)
	if identity.NormalizeHandle(handle) == "" {
		return nil, nil, fmt.Errorf("%w: handle is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return nil, nil, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = models.RoleMusician
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	want := identity.NormalizeHandle(handle)
	for _, a := range accounts {
		if identity.NormalizeHandle(a.Handle) == want {
			return nil, nil, fmt.Errorf("%w: %s", ErrHandleTaken, handle)
		}
	}

	account := models.NewAccount(strings.TrimSpace(in.DisplayName), handle, in.Password, in.Role)
	account.Instrument = in.Instrument
	if _, err := s.store.Insert(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	member := models.NewRosterMember(account.DisplayName, handle, string(in.Role), in.Instrument)
	if _, err := s.store.Insert(ctx, member); err != nil {
		return account, nil, fmt.Errorf("failed to create roster member: %w", err)
	}

	s.logger.Info("registered", "handle", handle, "role", in.Role)
	return account, member, nil
}

// Authenticate finds the account for handle and checks its password.
func (s *Service) Authenticate(ctx context.Context, handle, password string) (*models.Account, error) {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	want := identity.NormalizeHandle(handle)
	for _, a := range accounts {
		if identity.NormalizeHandle(a.Handle) != want {
			continue
		}
		stored := a.Password
		if stored == "" {
			stored = DefaultPassword
		}
		if stored == password {
			return a, nil
		}
	}
	return nil, shared.ErrAuthFailed
}

func (s *Service) matcher(ctx context.Context) (*identity.Matcher, error) {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	members, err := s.store.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	return identity.NewMatcher(accounts, members), nil
}

// Roster returns every member paired with its account, in roster order.
func (s *Service) Roster(ctx context.Context) ([]identity.Identity, error) {
	m, err := s.matcher(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]identity.Identity, 0, len(m.Members()))
	for _, mem := range m.Members() {
		entries = append(entries, identity.Identity{Account: m.AccountFor(mem), Member: mem})
	}
	return entries, nil
}

// Lookup resolves a handle, name or record id to an identity.
func (s *Service) Lookup(ctx context.Context, candidate string) (identity.Identity, error) {
	m, err := s.matcher(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	id, ok := m.Resolve(candidate)
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: %s", shared.ErrMemberNotFound, candidate)
	}
	return id, nil
}

// ProfileUpdate holds the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string
	Instrument  *string
	Password    *string
	PushToken   *string
}

// UpdateProfile writes the changes to the account and mirrors name and instrument onto
// its roster member. A failed member sync is logged, not returned.
func (s *Service) UpdateProfile(ctx context.Context, account *models.Account, p ProfileUpdate) error {
	fields := models.Fields{}
	memberFields := models.Fields{}
	if p.DisplayName != nil {
		fields[models.FieldDisplayName] = *p.DisplayName
		memberFields[models.FieldDisplayName] = *p.DisplayName
	}
	if p.Instrument != nil {
		fields[models.FieldInstrument] = *p.Instrument
		memberFields[models.FieldInstrument] = *p.Instrument
	}
	if p.Password != nil {
		fields[models.FieldPassword] = *p.Password
	}
	if p.PushToken != nil {
		fields[models.FieldPushToken] = *p.PushToken
	}
	if len(fields) == 0 {
		return nil
	}

	m, err := s.matcher(ctx)
	if err != nil {
		return err
	}
	member := m.MemberFor(account)

	if err := s.store.Update(ctx, models.CollectionAccounts, account.ID(), fields); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if member == nil || len(memberFields) == 0 {
		return nil
	}
	if err := s.store.Update(ctx, models.CollectionMembers, member.ID(), memberFields); err != nil {
		s.logger.Warn("failed to sync roster member", "member", member.ID(), "error", err)
	}
	return nil
}

// DeleteAccount removes an account and its roster member.
func (s *Service) DeleteAccount(ctx context.Context, account *models.Account) error {
	m, err := s.matcher(ctx)
	if err != nil {
		return err
	}
	member := m.MemberFor(account)

	if err := s.store.Delete(ctx, models.CollectionAccounts, account.ID()); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if member != nil {
		if err := s.store.Delete(ctx, models.CollectionMembers, member.ID()); err != nil {
			s.logger.Warn("failed to delete roster member", "member", member.ID(), "error", err)
		}
	}
	return nil
}

// Protected reports whether a role label marks a leadership position.
func Protected(roleLabel string) bool {
	norm := identity.NormalizeName(roleLabel)
	for _, r := range protectedRoles {
		if strings.Contains(norm, r) {
			return true
		}
	}
	return false
}

// RemoveMember deletes a roster member and its account. Only leaders may remove
// members, and members with leadership role labels cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actor *models.Account, memberID string) error {
	if actor == nil || !actor.IsLeader() {
		return fmt.Errorf("%w: only leaders can remove members", shared.ErrForbidden)
	}

	m, err := s.matcher(ctx)
	if err != nil {
		return err
	}
	member, ok := m.MemberByID(memberID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrMemberNotFound, memberID)
	}
	if Protected(member.RoleLabel) {
		return fmt.Errorf("%w: %s (%s)", ErrProtectedMember, member.DisplayName, member.RoleLabel)
	}

	if err := s.store.Delete(ctx, models.CollectionMembers, member.ID()); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if account := m.AccountFor(member); account != nil {
		if err := s.store.Delete(ctx, models.CollectionAccounts, account.ID()); err != nil {
			s.logger.Warn("failed to delete account", "account", account.ID(), "error", err)
		}
	}

	s.logger.Info("removed member", "member", member.DisplayName, "by", actor.Handle)
	return nil
}

// ConfirmParticipation sets whether the account's roster member confirmed attendance.
func (s *Service) ConfirmParticipation(ctx context.Context, account *models.Account, confirmed bool) (*models.RosterMember, error) {
	m, err := s.matcher(ctx)
	if err != nil {
		return nil, err
	}

	member := m.MemberFor(account)
	if member == nil {
		member, _ = m.MemberByID(account.ID())
	}
	if member == nil {
		return nil, fmt.Errorf("%w: no roster entry for %s", shared.ErrMemberNotFound, account.Handle)
	}

	if err := s.store.Update(ctx, models.CollectionMembers, member.ID(), models.Fields{models.FieldConfirmed: confirmed}); err != nil {
		return nil, fmt.Errorf("failed to update confirmation: %w", err)
	}
	return member, nil
}
