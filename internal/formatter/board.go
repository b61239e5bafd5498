package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/roster/internal/models"
)

// NoticeExport is the notice board.
type NoticeExport struct {
	Title   string
	Notices []*models.Notice
}

// EventExport is the calendar.
type EventExport struct {
	Title  string
	Events []*models.Event
}

// NotificationExport is the in-app notification feed.
type NotificationExport struct {
	Title         string
	Notifications []*models.Notification
}

type noticeRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Pinned   bool   `json:"pinned"`
}

type eventRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

type notificationRow struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

func (e *NoticeExport) rows() []noticeRow {
	rows := make([]noticeRow, 0, len(e.Notices))
	for _, n := range e.Notices {
		rows = append(rows, noticeRow{
			ID: n.ID(), Title: n.Title, Content: n.Content, Author: n.Author, Category: n.Category, Pinned: n.Pinned,
		})
	}
	return rows
}

func (e *EventExport) rows() []eventRow {
	rows := make([]eventRow, 0, len(e.Events))
	for _, ev := range e.Events {
		rows = append(rows, eventRow{
			ID: ev.ID(), Title: ev.Title, Date: ev.Date, Time: ev.Time, Kind: string(ev.Kind), Location: ev.Location,
		})
	}
	return rows
}

func (e *NotificationExport) rows() []notificationRow {
	rows := make([]notificationRow, 0, len(e.Notifications))
	for _, n := range e.Notifications {
		rows = append(rows, notificationRow{
			ID: n.ID(), Kind: string(n.Kind), Title: n.Title, Message: n.Message, Read: n.Read,
		})
	}
	return rows
}

// RenderNotices renders the notice board in format f.
func RenderNotices(f Format, e *NoticeExport) ([]byte, error) {
	headers := []string{"ID", "Title", "Content", "Author", "Category", "Pinned"}
	rows := e.rows()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Title, r.Content, r.Author, r.Category, strconv.FormatBool(r.Pinned)})
	}

	switch f {
	case FormatCSV:
		return writeCSV(headers, records)
	case FormatMarkdown:
		return markdownTable(titleOr(e.Title, "Notices"), "Notices", headers[1:], dropID(records)), nil
	case FormatJSON:
		return toJSON(rows)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Notices: %d\n\n", len(rows))
	for i, r := range rows {
		pin := ""
		if r.Pinned {
			pin = "[pinned] "
		}
		fmt.Fprintf(&buf, "%d. %s%s (%s)", i+1, pin, r.Title, r.Category)
		if r.Author != "" {
			fmt.Fprintf(&buf, " - %s", r.Author)
		}
		buf.WriteString("\n")
		if r.Content != "" {
			fmt.Fprintf(&buf, "   %s\n", r.Content)
		}
	}
	return buf.Bytes(), nil
}

// RenderEvents renders the calendar in format f.
func RenderEvents(f Format, e *EventExport) ([]byte, error) {
	headers := []string{"ID", "Title", "Date", "Time", "Kind", "Location"}
	rows := e.rows()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Title, r.Date, r.Time, r.Kind, r.Location})
	}

	switch f {
	case FormatCSV:
		return writeCSV(headers, records)
	case FormatMarkdown:
		return markdownTable(titleOr(e.Title, "Events"), "Events", headers[1:], dropID(records)), nil
	case FormatJSON:
		return toJSON(rows)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Events: %d\n\n", len(rows))
	for i, r := range rows {
		when := strings.TrimSpace(r.Date + " " + r.Time)
		fmt.Fprintf(&buf, "%d. %s %s [%s]", i+1, when, r.Title, r.Kind)
		if r.Location != "" {
			fmt.Fprintf(&buf, " @ %s", r.Location)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// RenderNotifications renders the notification feed in format f.
func RenderNotifications(f Format, e *NotificationExport) ([]byte, error) {
	headers := []string{"ID", "Kind", "Title", "Message", "Read"}
	rows := e.rows()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Kind, r.Title, r.Message, strconv.FormatBool(r.Read)})
	}

	switch f {
	case FormatCSV:
		return writeCSV(headers, records)
	case FormatMarkdown:
		return markdownTable(titleOr(e.Title, "Notifications"), "Notifications", headers[1:], dropID(records)), nil
	case FormatJSON:
		return toJSON(rows)
	}

	var buf bytes.Buffer
	unread := 0
	for _, r := range rows {
		if !r.Read {
			unread++
		}
	}
	fmt.Fprintf(&buf, "Notifications: %d (%d unread)\n\n", len(rows), unread)
	for i, r := range rows {
		mark := " "
		if !r.Read {
			mark = "*"
		}
		fmt.Fprintf(&buf, "%d. [%s] %s: %s\n", i+1, mark, r.Title, r.Message)
	}
	return buf.Bytes(), nil
}

func markdownTable(title, label string, headers []string, records [][]string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**%s**: %d\n\n", label, len(records))

	buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat("---|", len(headers)) + "\n")
	for _, rec := range records {
		cells := make([]string, len(rec))
		for i, c := range rec {
			cells[i] = mdCell(c)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return buf.Bytes()
}

func dropID(records [][]string) [][]string {
	out := make([][]string, len(records))
	for i, rec := range records {
		out[i] = rec[1:]
	}
	return out
}
