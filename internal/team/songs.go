package team

import (
	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
)

// AssignedSongs returns the songs that name this person in any scheme: their handle,
// their roster member id, or their display name.
func AssignedSongs(who identity.Identity, songs []*models.Song) []*models.Song {
	var out []*models.Song
	for _, s := range songs {
		if assignedTo(who, s.AssignedIdentifiers) {
			out = append(out, s)
		}
	}
	return out
}

func assignedTo(who identity.Identity, assigned []string) bool {
	handle := identity.NormalizeHandle(who.Handle())
	var memberID string
	var names []string
	if who.Member != nil {
		memberID = who.Member.ID()
		names = append(names, identity.NormalizeName(who.Member.DisplayName))
	}
	if who.Account != nil {
		names = append(names, identity.NormalizeName(who.Account.DisplayName))
	}

	for _, raw := range assigned {
		id := identity.Classify(raw)
		switch id.Kind {
		case identity.KindHandle:
			if handle != "" && identity.NormalizeHandle(id.Value) == handle {
				return true
			}
		default:
			if memberID != "" && id.Value == memberID {
				return true
			}
			n := identity.NormalizeName(id.Value)
			for _, name := range names {
				if name != "" && n == name {
					return true
				}
			}
		}
	}
	return false
}

// Overview is the dashboard's confirmation counter.
type Overview struct {
	Total     int
	Musicians int
	Confirmed int
}

// Summarize counts confirmed members against members with the musician role.
func Summarize(members []*models.RosterMember) Overview {
	o := Overview{Total: len(members)}
	for _, m := range members {
		if m.Confirmed {
			o.Confirmed++
		}
		if m.RoleLabel == string(models.RoleMusician) {
			o.Musicians++
		}
	}
	return o
}

// Ratio is confirmed over musicians, treating zero musicians as one.
func (o Overview) Ratio() float64 {
	d := o.Musicians
	if d == 0 {
		d = 1
	}
	return float64(o.Confirmed) / float64(d)
}
