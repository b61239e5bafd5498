package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roster/internal/feed"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// Store is the SQLite-backed document store.
type Store struct {
	db     *sql.DB
	broker feed.Broker
	logger *log.Logger
}

// NewStore creates a [Store]. A nil broker disables change events and therefore subscriptions.
func NewStore(db *sql.DB, broker feed.Broker, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{db: db, broker: broker, logger: logger}
}

// Insert stores a new record, assigning its id and sequence, and returns the id.
func (s *Store) Insert(ctx context.Context, r models.Record) (string, error) {
	t, err := tableFor(r.Collection())
	if err != nil {
		return "", err
	}

	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	values, err := t.values(r)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(ctx, tx, t.name)
	if err != nil {
		return "", fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now()

	cols := append([]string{"id", "sequence"}, t.columns...)
	cols = append(cols, "created_at", "updated_at")
	args := append([]any{id, sequence}, values...)
	args = append(args, now, now)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(cols, ", "), placeholders)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit insert: %w", err)
	}

	r.SetID(id)
	r.SetSequence(sequence)
	r.SetCreatedAt(now)
	r.SetUpdatedAt(now)

	s.publish(ctx, feed.Event{Collection: r.Collection(), ID: id, Op: feed.OpInsert})
	return id, nil
}

// Update merges fields into the live record with the given id.
//
// Field names must be updatable for the collection. A record that is missing or
// already deleted yields [ErrNotFound].
func (s *Store) Update(ctx context.Context, c models.Collection, id string, fields models.Fields) error {
	t, err := tableFor(c)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+2)
	for _, name := range names {
		col, ok := t.fields[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, c, name)
		}
		v, err := encodeValue(fields[name])
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c, name, err)
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND deleted_at IS NULL", t.name, strings.Join(sets, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.name, err)
	}

	if err := affectedOne(result, c, id); err != nil {
		return err
	}

	s.publish(ctx, feed.Event{Collection: c, ID: id, Op: feed.OpUpdate})
	return nil
}

// Delete soft-deletes a record. Deleting an absent record yields [ErrNotFound],
// which callers racing on the same duplicate treat as success.
func (s *Store) Delete(ctx context.Context, c models.Collection, id string) error {
	t, err := tableFor(c)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", t.name)
	result, err := s.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}

	if err := affectedOne(result, c, id); err != nil {
		return err
	}

	s.publish(ctx, feed.Event{Collection: c, ID: id, Op: feed.OpDelete})
	return nil
}

func affectedOne(result sql.Result, c models.Collection, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	return nil
}

// Get retrieves a live record by id.
func (s *Store) Get(ctx context.Context, c models.Collection, id string) (models.Record, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? AND deleted_at IS NULL", t.selectColumns(), t.name)
	r, err := t.scan(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	return r, nil
}

// List returns every live record of a collection in ascending sequence order.
func (s *Store) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE deleted_at IS NULL ORDER BY sequence ASC", t.selectColumns(), t.name)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		r, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Snapshot reads a collection as a [models.Snapshot] with version zero.
func (s *Store) Snapshot(ctx context.Context, c models.Collection) (models.Snapshot, error) {
	records, err := s.List(ctx, c)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Collection: c, Records: records}, nil
}

func (s *Store) publish(ctx context.Context, e feed.Event) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish change event", "collection", e.Collection, "id", e.ID, "op", e.Op, "error", err)
	}
}

// listAs lists a collection and narrows each record to T.
func listAs[T models.Record](ctx context.Context, s *Store, c models.Collection) ([]T, error) {
	records, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	return Narrow[T](records), nil
}

// Narrow keeps the records of type T, preserving order.
func Narrow[T models.Record](records []models.Record) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) Accounts(ctx context.Context) ([]*models.Account, error) {
	return listAs[*models.Account](ctx, s, models.CollectionAccounts)
}

func (s *Store) Members(ctx context.Context) ([]*models.RosterMember, error) {
	return listAs[*models.RosterMember](ctx, s, models.CollectionMembers)
}

func (s *Store) Songs(ctx context.Context) ([]*models.Song, error) {
	return listAs[*models.Song](ctx, s, models.CollectionSongs)
}

func (s *Store) Notices(ctx context.Context) ([]*models.Notice, error) {
	return listAs[*models.Notice](ctx, s, models.CollectionNotices)
}

func (s *Store) Events(ctx context.Context) ([]*models.Event, error) {
	return listAs[*models.Event](ctx, s, models.CollectionEvents)
}

func (s *Store) Notifications(ctx context.Context) ([]*models.Notification, error) {
	return listAs[*models.Notification](ctx, s, models.CollectionNotifications)
}
