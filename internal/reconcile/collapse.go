package reconcile

import (
	"cmp"
	"context"
	"slices"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
)

// KeyFunc derives the identity key duplicates are detected by. An empty key never collapses.
type KeyFunc func(models.Record) string

// AccountKey keys accounts by normalized handle.
func AccountKey(r models.Record) string {
	a, ok := r.(*models.Account)
	if !ok {
		return ""
	}
	return identity.NormalizeHandle(a.Handle)
}

// MemberKey keys roster members by normalized display name.
func MemberKey(r models.Record) string {
	m, ok := r.(*models.RosterMember)
	if !ok {
		return ""
	}
	return identity.NormalizeName(m.DisplayName)
}

// Collapse deletes every record whose key was already seen earlier in sequence order,
// so the oldest record for each key survives. The input slice is not modified.
//
// A failed delete is recorded and the remaining candidates are still processed.
// On an already deduplicated collection no writes are issued.
func Collapse(ctx context.Context, w Writer, c models.Collection, records []models.Record, key KeyFunc) []WriteResult {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b models.Record) int { return cmp.Compare(a.Sequence(), b.Sequence()) })

	seen := make(map[string]struct{}, len(ordered))
	var results []WriteResult
	for _, r := range ordered {
		if ctx.Err() != nil {
			break
		}
		k := key(r)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			continue
		}
		results = append(results, deleteRecord(ctx, w, c, r.ID()))
	}
	return results
}
