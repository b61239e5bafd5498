package repositories

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/roster/internal/models"
)

// table describes how one collection maps onto its SQLite table.
type table struct {
	name    string
	columns []string
	// fields maps updatable field names to columns.
	fields map[string]string
	values func(models.Record) ([]any, error)
	scan   func(scanner) (models.Record, error)
}

func (t table) selectColumns() string {
	cols := append([]string{"id", "sequence"}, t.columns...)
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

var tables = map[models.Collection]table{
	models.CollectionAccounts: {
		name:    "accounts",
		columns: []string{"display_name", "handle", "password", "role", "instrument", "push_token"},
		fields: map[string]string{
			models.FieldDisplayName: "display_name",
			models.FieldHandle:      "handle",
			models.FieldPassword:    "password",
			models.FieldRole:        "role",
			models.FieldInstrument:  "instrument",
			models.FieldPushToken:   "push_token",
		},
		values: func(r models.Record) ([]any, error) {
			a, ok := r.(*models.Account)
			if !ok {
				return nil, recordTypeError(models.CollectionAccounts, r)
			}
			return []any{a.DisplayName, a.Handle, a.Password, string(a.Role), a.Instrument, a.PushToken}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanAccount(s) },
	},
	models.CollectionMembers: {
		name:    "members",
		columns: []string{"display_name", "handle", "role_label", "status", "instrument", "confirmed"},
		fields: map[string]string{
			models.FieldDisplayName: "display_name",
			models.FieldHandle:      "handle",
			models.FieldRoleLabel:   "role_label",
			models.FieldStatus:      "status",
			models.FieldInstrument:  "instrument",
			models.FieldConfirmed:   "confirmed",
		},
		values: func(r models.Record) ([]any, error) {
			m, ok := r.(*models.RosterMember)
			if !ok {
				return nil, recordTypeError(models.CollectionMembers, r)
			}
			return []any{m.DisplayName, m.Handle, m.RoleLabel, string(m.Status), m.Instrument, m.Confirmed}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanMember(s) },
	},
	models.CollectionSongs: {
		name:    "songs",
		columns: []string{"title", "artist", "song_key", "category", "assigned_identifiers", "notes", "reference_url"},
		fields: map[string]string{
			models.FieldTitle:               "title",
			models.FieldArtist:              "artist",
			models.FieldKey:                 "song_key",
			models.FieldCategory:            "category",
			models.FieldAssignedIdentifiers: "assigned_identifiers",
			models.FieldNotes:               "notes",
			models.FieldReferenceURL:        "reference_url",
		},
		values: func(r models.Record) ([]any, error) {
			s, ok := r.(*models.Song)
			if !ok {
				return nil, recordTypeError(models.CollectionSongs, r)
			}
			assigned, err := encodeIdentifiers(s.AssignedIdentifiers)
			if err != nil {
				return nil, err
			}
			return []any{s.Title, s.Artist, s.Key, string(s.Category), assigned, s.Notes, s.ReferenceURL}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanSong(s) },
	},
	models.CollectionNotices: {
		name:    "notices",
		columns: []string{"title", "content", "author", "category", "pinned"},
		fields: map[string]string{
			models.FieldTitle:    "title",
			models.FieldContent:  "content",
			models.FieldAuthor:   "author",
			models.FieldCategory: "category",
			models.FieldPinned:   "pinned",
		},
		values: func(r models.Record) ([]any, error) {
			n, ok := r.(*models.Notice)
			if !ok {
				return nil, recordTypeError(models.CollectionNotices, r)
			}
			return []any{n.Title, n.Content, n.Author, n.Category, n.Pinned}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanNotice(s) },
	},
	models.CollectionEvents: {
		name:    "events",
		columns: []string{"title", "event_date", "event_time", "kind", "location", "notes"},
		fields: map[string]string{
			models.FieldTitle:    "title",
			models.FieldDate:     "event_date",
			models.FieldTime:     "event_time",
			models.FieldKind:     "kind",
			models.FieldLocation: "location",
			models.FieldNotes:    "notes",
		},
		values: func(r models.Record) ([]any, error) {
			e, ok := r.(*models.Event)
			if !ok {
				return nil, recordTypeError(models.CollectionEvents, r)
			}
			return []any{e.Title, e.Date, e.Time, string(e.Kind), e.Location, e.Notes}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanEvent(s) },
	},
	models.CollectionNotifications: {
		name:    "notifications",
		columns: []string{"kind", "title", "message", "is_read"},
		fields: map[string]string{
			models.FieldKind:    "kind",
			models.FieldTitle:   "title",
			models.FieldMessage: "message",
			models.FieldRead:    "is_read",
		},
		values: func(r models.Record) ([]any, error) {
			n, ok := r.(*models.Notification)
			if !ok {
				return nil, recordTypeError(models.CollectionNotifications, r)
			}
			return []any{string(n.Kind), n.Title, n.Message, n.Read}, nil
		},
		scan: func(s scanner) (models.Record, error) { return scanNotification(s) },
	},
}

func tableFor(c models.Collection) (table, error) {
	t, ok := tables[c]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", models.ErrUnknownCollection, c)
	}
	return t, nil
}

func recordTypeError(c models.Collection, r models.Record) error {
	return fmt.Errorf("record of type %T does not belong to %s", r, c)
}

// setBase copies the store-managed columns onto a scanned record.
func setBase(r models.Record, id string, sequence int, createdAt, updatedAt time.Time) {
	r.SetID(id)
	r.SetSequence(sequence)
	r.SetCreatedAt(createdAt)
	r.SetUpdatedAt(updatedAt)
}

func scanAccount(s scanner) (*models.Account, error) {
	var (
		a         models.Account
		id        string
		sequence  int
		role      string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &a.DisplayName, &a.Handle, &a.Password, &role, &a.Instrument, &a.PushToken, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	setBase(&a, id, sequence, createdAt, updatedAt)
	return &a, nil
}

func scanMember(s scanner) (*models.RosterMember, error) {
	var (
		m         models.RosterMember
		id        string
		sequence  int
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &m.DisplayName, &m.Handle, &m.RoleLabel, &status, &m.Instrument, &m.Confirmed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = models.MemberStatus(status)
	setBase(&m, id, sequence, createdAt, updatedAt)
	return &m, nil
}

func scanSong(s scanner) (*models.Song, error) {
	var (
		song      models.Song
		id        string
		sequence  int
		category  string
		assigned  string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &song.Title, &song.Artist, &song.Key, &category, &assigned, &song.Notes, &song.ReferenceURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	song.Category = models.SongCategory(category)
	if song.AssignedIdentifiers, err = decodeIdentifiers(assigned); err != nil {
		return nil, fmt.Errorf("song %s: %w", id, err)
	}
	setBase(&song, id, sequence, createdAt, updatedAt)
	return &song, nil
}

func scanNotice(s scanner) (*models.Notice, error) {
	var (
		n         models.Notice
		id        string
		sequence  int
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &n.Title, &n.Content, &n.Author, &n.Category, &n.Pinned, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	setBase(&n, id, sequence, createdAt, updatedAt)
	return &n, nil
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		e         models.Event
		id        string
		sequence  int
		kind      string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &e.Title, &e.Date, &e.Time, &kind, &e.Location, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Kind = models.EventKind(kind)
	setBase(&e, id, sequence, createdAt, updatedAt)
	return &e, nil
}

func scanNotification(s scanner) (*models.Notification, error) {
	var (
		n         models.Notification
		id        string
		sequence  int
		kind      string
		createdAt time.Time
		updatedAt time.Time
	)
	err := s.Scan(&id, &sequence, &kind, &n.Title, &n.Message, &n.Read, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	n.Kind = models.NotificationKind(kind)
	setBase(&n, id, sequence, createdAt, updatedAt)
	return &n, nil
}

func encodeIdentifiers(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode assigned identifiers: %w", err)
	}
	return string(b), nil
}

func decodeIdentifiers(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode assigned identifiers: %w", err)
	}
	return ids, nil
}

// encodeValue converts a [models.Fields] value into something the driver can bind.
func encodeValue(v any) (any, error) {
	switch v := v.(type) {
	case string, int, int64, bool:
		return v, nil
	case []string:
		return encodeIdentifiers(v)
	case models.Role:
		return string(v), nil
	case models.MemberStatus:
		return string(v), nil
	case models.SongCategory:
		return string(v), nil
	case models.EventKind:
		return string(v), nil
	case models.NotificationKind:
		return string(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}
