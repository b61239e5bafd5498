package models

import (
	"errors"
	"strings"
	"time"
)

// Notice is a post on the team board.
type Notice struct {
	Base
	Title    string
	Content  string
	Author   string
	Category string
	Pinned   bool
}

func NewNotice(title, content, author, category string) *Notice {
	if category == "" {
		category = "General"
	}
	return &Notice{Base: newBase(), Title: title, Content: content, Author: author, Category: category}
}

func (n *Notice) Collection() Collection { return CollectionNotices }

func (n *Notice) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// EventKind classifies a calendar entry.
type EventKind string

const (
	EventRehearsal EventKind = "Rehearsal"
	EventService   EventKind = "Service"
	EventMeeting   EventKind = "Meeting"
	EventOther     EventKind = "Other"
)

// DateLayout is the calendar date format used by events.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// Event is a calendar entry.
type Event struct {
	Base
	Title    string
	Date     string
	Time     string
	Kind     EventKind
	Location string
	Notes    string
}

func NewEvent(title, date, at string, kind EventKind) *Event {
	if kind == "" {
		kind = EventOther
	}
	return &Event{Base: newBase(), Title: title, Date: date, Time: at, Kind: kind}
}

func (e *Event) Collection() Collection { return CollectionEvents }

func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
