package reconcile

import (
	"context"
	"slices"
	"strings"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
)

// BackfillHandles gives every member without a handle the handle of the account
// whose display name matches. Members with no matching account are left alone.
func BackfillHandles(ctx context.Context, w Writer, m *identity.Matcher, members []*models.RosterMember) []WriteResult {
	var results []WriteResult
	for _, mem := range members {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(mem.Handle) != "" {
			continue
		}
		acct, ok := m.AccountByName(mem.DisplayName)
		if !ok || strings.TrimSpace(acct.Handle) == "" {
			continue
		}
		results = append(results, updateRecord(ctx, w, models.CollectionMembers, mem.ID(), models.Fields{
			models.FieldHandle: acct.Handle,
		}))
	}
	return results
}

// CanonicalizeAssignments replaces legacy member ids in each song's assignments with
// that member's handle. Order and all other entries are preserved, orphaned ids stay,
// and a song is written at most once, only when some entry converted.
func CanonicalizeAssignments(ctx context.Context, w Writer, m *identity.Matcher, songs []*models.Song) []WriteResult {
	var results []WriteResult
	for _, song := range songs {
		if ctx.Err() != nil {
			break
		}
		next, changed := canonicalize(m, song.AssignedIdentifiers)
		if !changed {
			continue
		}
		results = append(results, updateRecord(ctx, w, models.CollectionSongs, song.ID(), models.Fields{
			models.FieldAssignedIdentifiers: next,
		}))
	}
	return results
}

func canonicalize(m *identity.Matcher, assigned []string) ([]string, bool) {
	next := slices.Clone(assigned)
	changed := false
	for i, raw := range assigned {
		if identity.Classify(raw).Kind != identity.KindLegacyRecordID {
			continue
		}
		mem, ok := m.MemberByID(strings.TrimSpace(raw))
		if !ok || strings.TrimSpace(mem.Handle) == "" {
			continue
		}
		next[i] = mem.Handle
		changed = true
	}
	return next, changed
}
