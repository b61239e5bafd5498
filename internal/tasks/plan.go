package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/team"
)

// Reason says why a person is being reminded.
type Reason string

const (
	ReasonConfirm  Reason = "confirm"
	ReasonAssigned Reason = "assigned"
)

const maxListedSongs = 3

// PlanReminders builds the reminder jobs for the current roster. Members without a
// handle cannot be addressed and are skipped. Jobs follow member order.
func PlanReminders(accounts []*models.Account, members []*models.RosterMember, songs []*models.Song) []Job {
	matcher := identity.NewMatcher(accounts, members)

	var jobs []Job
	for _, m := range matcher.Members() {
		if m.Status != models.StatusActive {
			continue
		}
		externalID := identity.NormalizeHandle(m.Handle)
		if externalID == "" {
			continue
		}

		who := identity.Identity{Member: m, Account: matcher.AccountFor(m)}

		if !m.Confirmed {
			jobs = append(jobs, Job{
				Recipient: m.DisplayName,
				Reason:    ReasonConfirm,
				Message: notify.Message{
					Title:       "Confirm your participation",
					Body:        fmt.Sprintf("%s, let the team know if you can make it this week.", m.DisplayName),
					URL:         "/",
					ExternalIDs: []string{externalID},
				},
			})
		}

		if assigned := team.AssignedSongs(who, songs); len(assigned) > 0 {
			jobs = append(jobs, Job{
				Recipient: m.DisplayName,
				Reason:    ReasonAssigned,
				Message: notify.Message{
					Title:       "Your songs",
					Body:        assignedBody(assigned),
					URL:         "/songs",
					ExternalIDs: []string{externalID},
				},
			})
		}
	}
	return jobs
}

func assignedBody(songs []*models.Song) string {
	titles := make([]string, 0, maxListedSongs)
	for i, s := range songs {
		if i == maxListedSongs {
			break
		}
		titles = append(titles, s.Title)
	}

	body := fmt.Sprintf("You have %d assigned: %s", len(songs), strings.Join(titles, ", "))
	if extra := len(songs) - len(titles); extra > 0 {
		body += fmt.Sprintf(" and %d more", extra)
	}
	return body
}
