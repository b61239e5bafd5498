// package formatter renders the roster and song list in various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/roster/internal/identity"
	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/shared"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or one of the short aliases "md" and "txt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// RosterExport is the team roster as shown to a leader.
type RosterExport struct {
	Team    string
	Members []*models.RosterMember
}

// SongExport is a song list. Assigned identifiers are shown by display name
// when the matcher can resolve them.
type SongExport struct {
	Title   string
	Songs   []*models.Song
	Matcher *identity.Matcher
}

type memberRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Handle     string `json:"handle"`
	Role       string `json:"role"`
	Instrument string `json:"instrument"`
	Status     string `json:"status"`
	Confirmed  bool   `json:"confirmed"`
}

type songRow struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Key      string   `json:"key"`
	Category string   `json:"category"`
	Assigned []string `json:"assigned"`
}

func (e *RosterExport) rows() []memberRow {
	rows := make([]memberRow, 0, len(e.Members))
	for _, m := range e.Members {
		rows = append(rows, memberRow{
			ID:         m.ID(),
			Name:       m.DisplayName,
			Handle:     m.Handle,
			Role:       m.RoleLabel,
			Instrument: m.Instrument,
			Status:     string(m.Status),
			Confirmed:  m.Confirmed,
		})
	}
	return rows
}

func (e *SongExport) rows() []songRow {
	rows := make([]songRow, 0, len(e.Songs))
	for _, s := range e.Songs {
		rows = append(rows, songRow{
			ID:       s.ID(),
			Title:    s.Title,
			Artist:   s.Artist,
			Key:      s.Key,
			Category: string(s.Category),
			Assigned: e.assigned(s),
		})
	}
	return rows
}

func (e *SongExport) assigned(s *models.Song) []string {
	names := make([]string, 0, len(s.AssignedIdentifiers))
	for _, id := range s.AssignedIdentifiers {
		names = append(names, e.displayName(id))
	}
	return names
}

func (e *SongExport) displayName(id string) string {
	if e.Matcher == nil {
		return id
	}
	who, ok := e.Matcher.Resolve(id)
	switch {
	case !ok:
		return id
	case who.Member != nil && who.Member.DisplayName != "":
		return who.Member.DisplayName
	case who.Account != nil && who.Account.DisplayName != "":
		return who.Account.DisplayName
	default:
		return id
	}
}

// RenderRoster renders the roster in format f.
func RenderRoster(f Format, e *RosterExport) ([]byte, error) {
	switch f {
	case FormatCSV:
		return RosterToCSV(e)
	case FormatMarkdown:
		return RosterToMarkdown(e)
	case FormatJSON:
		return toJSON(e.rows())
	default:
		return RosterToText(e)
	}
}

// RenderSongs renders the song list in format f.
func RenderSongs(f Format, e *SongExport) ([]byte, error) {
	switch f {
	case FormatCSV:
		return SongsToCSV(e)
	case FormatMarkdown:
		return SongsToMarkdown(e)
	case FormatJSON:
		return toJSON(e.rows())
	default:
		return SongsToText(e)
	}
}

// RosterToCSV writes columns: ID, Name, Handle, Role, Instrument, Status, Confirmed
func RosterToCSV(e *RosterExport) ([]byte, error) {
	headers := []string{"ID", "Name", "Handle", "Role", "Instrument", "Status", "Confirmed"}
	var records [][]string
	for _, r := range e.rows() {
		records = append(records, []string{
			r.ID, r.Name, r.Handle, r.Role, r.Instrument, r.Status, strconv.FormatBool(r.Confirmed),
		})
	}
	return writeCSV(headers, records)
}

// SongsToCSV writes columns: ID, Title, Artist, Key, Category, Assigned.
// Assigned names are joined with "; ".
func SongsToCSV(e *SongExport) ([]byte, error) {
	headers := []string{"ID", "Title", "Artist", "Key", "Category", "Assigned"}
	var records [][]string
	for _, r := range e.rows() {
		records = append(records, []string{
			r.ID, r.Title, r.Artist, r.Key, r.Category, strings.Join(r.Assigned, "; "),
		})
	}
	return writeCSV(headers, records)
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// RosterToMarkdown renders the roster as a Markdown table.
func RosterToMarkdown(e *RosterExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", titleOr(e.Team, "Roster"))

	confirmed := 0
	for _, m := range e.Members {
		if m.Confirmed {
			confirmed++
		}
	}
	fmt.Fprintf(&buf, "**Members**: %d\n", len(e.Members))
	fmt.Fprintf(&buf, "**Confirmed**: %d\n\n", confirmed)

	buf.WriteString("| Name | Handle | Role | Instrument | Status | Confirmed |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range e.rows() {
		mark := ""
		if r.Confirmed {
			mark = "yes"
		}
		fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s | %s |\n",
			mdCell(r.Name), mdCell(r.Handle), mdCell(r.Role), mdCell(r.Instrument), r.Status, mark)
	}
	return buf.Bytes(), nil
}

// SongsToMarkdown renders the song list as a numbered Markdown list.
func SongsToMarkdown(e *SongExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", titleOr(e.Title, "Songs"))
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(e.Songs))

	for i, r := range e.rows() {
		keyPart := ""
		if r.Key != "" {
			keyPart = fmt.Sprintf(" (%s)", r.Key)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, r.Artist, r.Title, keyPart, r.Category)
		if len(r.Assigned) > 0 {
			fmt.Fprintf(&buf, "   - Assigned: %s\n", strings.Join(r.Assigned, ", "))
		}
	}
	return buf.Bytes(), nil
}

// RosterToText renders one line per member.
func RosterToText(e *RosterExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Team: %s\n", titleOr(e.Team, "Roster"))
	fmt.Fprintf(&buf, "Members: %d\n\n", len(e.Members))

	for i, r := range e.rows() {
		check := " "
		if r.Confirmed {
			check = "x"
		}
		fmt.Fprintf(&buf, "%d. [%s] %s %s - %s", i+1, check, r.Name, r.Handle, r.Role)
		if r.Instrument != "" {
			fmt.Fprintf(&buf, " (%s)", r.Instrument)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// SongsToText renders one line per song.
func SongsToText(e *SongExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Songs: %d\n\n", len(e.Songs))
	for i, r := range e.rows() {
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, r.Artist, r.Title)
		if len(r.Assigned) > 0 {
			fmt.Fprintf(&buf, " -> %s", strings.Join(r.Assigned, ", "))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func toJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport writes rendered data to path.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func titleOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
