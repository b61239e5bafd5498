package models

import (
	"errors"
	"strings"
)

// MemberStatus is a roster member's availability.
type MemberStatus string

const (
	StatusActive  MemberStatus = "Active"
	StatusResting MemberStatus = "Resting"
	StatusPending MemberStatus = "Pending"
)

var ErrInvalidStatus = errors.New("status must be Active, Resting or Pending")

// RosterMember is an entry in the team roster. Handle is empty on legacy rows
// until reconciliation backfills it from the account with the same name.
type RosterMember struct {
	Base
	DisplayName string
	Handle      string
	RoleLabel   string
	Status      MemberStatus
	Instrument  string
	Confirmed   bool
}

// NewRosterMember creates an active, unconfirmed [RosterMember].
func NewRosterMember(displayName, handle, roleLabel, instrument string) *RosterMember {
	return &RosterMember{
		Base:        newBase(),
		DisplayName: displayName,
		Handle:      handle,
		RoleLabel:   roleLabel,
		Status:      StatusActive,
		Instrument:  instrument,
	}
}

func (m *RosterMember) Collection() Collection { return CollectionMembers }

func (m *RosterMember) Validate() error {
	if strings.TrimSpace(m.DisplayName) == "" {
		return ErrMissingDisplayName
	}
	switch m.Status {
	case StatusActive, StatusResting, StatusPending:
	default:
		return ErrInvalidStatus
	}
	return nil
}
