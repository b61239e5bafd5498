package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/repositories"
)

// Writer is the subset of the store the reconciler mutates through.
type Writer interface {
	Update(ctx context.Context, c models.Collection, id string, fields models.Fields) error
	Delete(ctx context.Context, c models.Collection, id string) error
}

// Op is the kind of write a result describes.
type Op string

const (
	OpDelete Op = "delete"
	OpUpdate Op = "update"
)

// WriteResult records one write attempt.
type WriteResult struct {
	Op         Op
	Collection models.Collection
	ID         string
	Fields     models.Fields
	Err        error
}

// OK reports whether the write succeeded.
func (r WriteResult) OK() bool { return r.Err == nil }

// Benign reports whether the write failed only because the record was already gone,
// which happens when two passes race on the same duplicate.
func (r WriteResult) Benign() bool { return errors.Is(r.Err, repositories.ErrNotFound) }

func (r WriteResult) String() string {
	status := "ok"
	if r.Err != nil {
		status = r.Err.Error()
	}
	return fmt.Sprintf("%s %s/%s: %s", r.Op, r.Collection, r.ID, status)
}

func deleteRecord(ctx context.Context, w Writer, c models.Collection, id string) WriteResult {
	return WriteResult{Op: OpDelete, Collection: c, ID: id, Err: w.Delete(ctx, c, id)}
}

func updateRecord(ctx context.Context, w Writer, c models.Collection, id string, fields models.Fields) WriteResult {
	return WriteResult{Op: OpUpdate, Collection: c, ID: id, Fields: fields, Err: w.Update(ctx, c, id, fields)}
}
