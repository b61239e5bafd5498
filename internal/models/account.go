package models

import (
	"errors"
	"strings"
)

// Role is an account's permission level.
type Role string

const (
	RoleLeader   Role = "Leader"
	RoleMusician Role = "Musician"
)

var (
	ErrMissingHandle      = errors.New("handle is required")
	ErrMissingDisplayName = errors.New("display name is required")
	ErrInvalidRole        = errors.New("role must be Leader or Musician")
)

// Account is a login identity. Handles are unique modulo case and one leading "@",
// but the store does not enforce it: duplicates are collapsed by reconciliation.
type Account struct {
	Base
	DisplayName string
	Handle      string
	Password    string
	Role        Role
	Instrument  string
	PushToken   string
}

// NewAccount creates an [Account] with fresh timestamps. The id and sequence are assigned on insert.
func NewAccount(displayName, handle, password string, role Role) *Account {
	return &Account{Base: newBase(), DisplayName: displayName, Handle: handle, Password: password, Role: role}
}

func (a *Account) Collection() Collection { return CollectionAccounts }

// IsLeader reports whether the account may manage the roster.
func (a *Account) IsLeader() bool { return a.Role == RoleLeader }

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Handle) == "" {
		return ErrMissingHandle
	}
	if strings.TrimSpace(a.DisplayName) == "" {
		return ErrMissingDisplayName
	}
	if a.Role != RoleLeader && a.Role != RoleMusician {
		return ErrInvalidRole
	}
	return nil
}
