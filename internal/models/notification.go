package models

import "errors"

// NotificationKind names the leader action that produced a notification.
type NotificationKind string

const (
	NotifySong   NotificationKind = "song"
	NotifyNotice NotificationKind = "notice"
	NotifyEvent  NotificationKind = "event"
)

var ErrInvalidKind = errors.New("kind must be song, notice or event")

// Notification records a leader action shown in the in-app feed.
type Notification struct {
	Base
	Kind    NotificationKind
	Title   string
	Message string
	Read    bool
}

func NewNotification(kind NotificationKind, title, message string) *Notification {
	return &Notification{Base: newBase(), Kind: kind, Title: title, Message: message}
}

func (n *Notification) Collection() Collection { return CollectionNotifications }

func (n *Notification) Validate() error {
	switch n.Kind {
	case NotifySong, NotifyNotice, NotifyEvent:
	default:
		return ErrInvalidKind
	}
	if n.Title == "" {
		return ErrMissingTitle
	}
	return nil
}
