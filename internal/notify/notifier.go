package notify

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// Store is the part of the document store the notifier writes to.
type Store interface {
	Insert(ctx context.Context, r models.Record) (string, error)
	Update(ctx context.Context, c models.Collection, id string, fields models.Fields) error
	Notifications(ctx context.Context) ([]*models.Notification, error)
}

// LeaderMessage builds the notification text for a leader publishing content.
func LeaderMessage(leaderName string, kind models.NotificationKind, contentTitle string) (title, body string) {
	switch kind {
	case models.NotifySong:
		return "New Song", fmt.Sprintf("%s just uploaded a new song: %s", leaderName, contentTitle)
	case models.NotifyNotice:
		return "New Official Notice", fmt.Sprintf("%s just posted a notice: %s", leaderName, contentTitle)
	case models.NotifyEvent:
		return "New Event Scheduled", fmt.Sprintf("%s scheduled a new event: %s", leaderName, contentTitle)
	default:
		return "New Update", contentTitle
	}
}

// Notifier records leader actions in the notifications collection and pushes them.
type Notifier struct {
	store   Store
	gateway Gateway
	logger  *log.Logger
}

func NewNotifier(store Store, gateway Gateway, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if gateway == nil {
		gateway = NewLogGateway(logger)
	}
	return &Notifier{store: store, gateway: gateway, logger: shared.WithLogger(logger, "component", "notify")}
}

// Announce stores a notification for a leader action and pushes it to every subscriber.
// Push failures are logged; only failing to store the notification is returned.
func (n *Notifier) Announce(ctx context.Context, leader *models.Account, kind models.NotificationKind, contentTitle string) (*models.Notification, error) {
	name := "A leader"
	if leader != nil && leader.DisplayName != "" {
		name = leader.DisplayName
	}

	title, body := LeaderMessage(name, kind, contentTitle)
	note := models.NewNotification(kind, title, body)
	if _, err := n.store.Insert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if _, err := n.gateway.Deliver(ctx, Message{Title: title, Body: body, URL: "/"}); err != nil {
		n.logger.Warn("push delivery failed", "title", title, "error", err)
	}
	return note, nil
}

// MarkAllRead flags every unread notification as read and returns how many were
// updated. Individual failures are skipped.
func (n *Notifier) MarkAllRead(ctx context.Context) (int, error) {
	notes, err := n.store.Notifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load notifications: %w", err)
	}

	marked := 0
	for _, note := range notes {
		if note.Read {
			continue
		}
		if err := n.store.Update(ctx, models.CollectionNotifications, note.ID(), models.Fields{models.FieldRead: true}); err != nil {
			n.logger.Debug("failed to mark notification read", "id", note.ID(), "error", err)
			continue
		}
		marked++
	}
	return marked, nil
}
