package models

import (
	"errors"
	"time"
)

// Collection names a document collection in the store.
type Collection string

const (
	CollectionAccounts      Collection = "accounts"
	CollectionMembers       Collection = "members"
	CollectionSongs         Collection = "songs"
	CollectionNotices       Collection = "notices"
	CollectionEvents        Collection = "events"
	CollectionNotifications Collection = "notifications"
)

var ErrUnknownCollection = errors.New("unknown collection")

// Collections returns every collection in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionAccounts,
		CollectionMembers,
		CollectionSongs,
		CollectionNotices,
		CollectionEvents,
		CollectionNotifications,
	}
}

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Collection) String() string { return string(c) }

// Record defines the base interface for every persisted record.
type Record interface {
	ID() string           // ID returns the store-assigned identifier
	Sequence() int        // Sequence returns the creation order within the collection
	CreatedAt() time.Time // CreatedAt returns when the record was created
	UpdatedAt() time.Time // UpdatedAt returns when the record was last written
	Collection() Collection
	Validate() error // Validate checks required fields before insert

	SetID(id string)
	SetSequence(seq int)
	SetCreatedAt(t time.Time)
	SetUpdatedAt(t time.Time)
}

// Base holds the store-managed metadata every record embeds.
type Base struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
}

func newBase() Base {
	now := time.Now()
	return Base{createdAt: now, updatedAt: now}
}

func (b *Base) ID() string               { return b.id }
func (b *Base) Sequence() int            { return b.sequence }
func (b *Base) CreatedAt() time.Time     { return b.createdAt }
func (b *Base) UpdatedAt() time.Time     { return b.updatedAt }
func (b *Base) SetID(id string)          { b.id = id }
func (b *Base) SetSequence(seq int)      { b.sequence = seq }
func (b *Base) SetCreatedAt(t time.Time) { b.createdAt = t }
func (b *Base) SetUpdatedAt(t time.Time) { b.updatedAt = t }

// Fields is a partial update: field name to new value.
type Fields map[string]any

// Updatable field names.
const (
	FieldDisplayName         = "displayName"
	FieldHandle              = "handle"
	FieldPassword            = "password"
	FieldRole                = "role"
	FieldRoleLabel           = "roleLabel"
	FieldStatus              = "status"
	FieldInstrument          = "instrument"
	FieldPushToken           = "pushToken"
	FieldConfirmed           = "confirmed"
	FieldTitle               = "title"
	FieldArtist              = "artist"
	FieldKey                 = "key"
	FieldCategory            = "category"
	FieldAssignedIdentifiers = "assignedIdentifiers"
	FieldNotes               = "notes"
	FieldReferenceURL        = "referenceUrl"
	FieldContent             = "content"
	FieldAuthor              = "author"
	FieldPinned              = "pinned"
	FieldDate                = "date"
	FieldTime                = "time"
	FieldKind                = "kind"
	FieldLocation            = "location"
	FieldMessage             = "message"
	FieldRead                = "read"
)

// Snapshot is a full, ordered read of one collection.
//
// Records are in ascending sequence order. Version increases with every snapshot
// a subscription delivers and is zero for one-off reads.
type Snapshot struct {
	Collection Collection
	Records    []Record
	Version    uint64
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.Records) }
