// Package seed imports roster data from YAML.
//
// A song assignment written as "member:<key>" expands to the record id of the member
// declared with that key, which reproduces the legacy id-based assignments that
// reconciliation migrates to handles.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/desertthunder/roster/internal/models"
)

const memberRefPrefix = "member:"

//go:embed demo.yaml
var demoData []byte

var (
	ErrDuplicateKey     = errors.New("duplicate member key")
	ErrUnknownMemberRef = errors.New("unknown member reference")
)

// Inserter stores a record and returns its id.
type Inserter interface {
	Insert(ctx context.Context, r models.Record) (string, error)
}

// Document is a seed file.
type Document struct {
	Accounts []Account `yaml:"accounts"`
	Members  []Member  `yaml:"members"`
	Songs    []Song    `yaml:"songs"`
	Notices  []Notice  `yaml:"notices"`
	Events   []Event   `yaml:"events"`
}

type Account struct {
	Name       string `yaml:"name"`
	Handle     string `yaml:"handle"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Instrument string `yaml:"instrument,omitempty"`
}

// Member is a roster entry. Key is only used for "member:<key>" references.
type Member struct {
	Key        string `yaml:"key,omitempty"`
	Name       string `yaml:"name"`
	Handle     string `yaml:"handle,omitempty"`
	Role       string `yaml:"role"`
	Instrument string `yaml:"instrument,omitempty"`
	Status     string `yaml:"status,omitempty"`
	Confirmed  bool   `yaml:"confirmed,omitempty"`
}

type Song struct {
	Title    string   `yaml:"title"`
	Artist   string   `yaml:"artist,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Category string   `yaml:"category,omitempty"`
	Assigned []string `yaml:"assigned,omitempty"`
	Notes    string   `yaml:"notes,omitempty"`
	URL      string   `yaml:"url,omitempty"`
}

type Notice struct {
	Title    string `yaml:"title"`
	Content  string `yaml:"content"`
	Author   string `yaml:"author,omitempty"`
	Category string `yaml:"category,omitempty"`
	Pinned   bool   `yaml:"pinned,omitempty"`
}

type Event struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Time     string `yaml:"time,omitempty"`
	Kind     string `yaml:"kind,omitempty"`
	Location string `yaml:"location,omitempty"`
	Notes    string `yaml:"notes,omitempty"`
}

// Result counts the records a seed inserted.
type Result struct {
	Accounts int
	Members  int
	Songs    int
	Notices  int
	Events   int
}

func (r Result) String() string {
	return fmt.Sprintf("%d accounts, %d members, %d songs, %d notices, %d events",
		r.Accounts, r.Members, r.Songs, r.Notices, r.Events)
}

// Parse decodes a seed document, rejecting unknown fields.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &doc, nil
}

// Load reads and parses a seed file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Demo returns the built-in demo document, which contains the duplicates and legacy
// assignments reconciliation is meant to clean up.
func Demo() *Document {
	doc, err := Parse(bytes.NewReader(demoData))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded demo seed: %v", err))
	}
	return doc
}

func (d *Document) validate() error {
	keys := make(map[string]bool)
	for _, m := range d.Members {
		if m.Key == "" {
			continue
		}
		if keys[m.Key] {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, m.Key)
		}
		keys[m.Key] = true
	}

	for _, s := range d.Songs {
		for _, a := range s.Assigned {
			if key, ok := strings.CutPrefix(a, memberRefPrefix); ok && !keys[key] {
				return fmt.Errorf("%w: %q in song %q", ErrUnknownMemberRef, a, s.Title)
			}
		}
	}
	return nil
}

// Apply inserts the document in dependency order: accounts, members, songs, notices, events.
// It stops at the first failed insert; records already inserted stay.
func Apply(ctx context.Context, store Inserter, doc *Document) (Result, error) {
	var res Result

	for _, a := range doc.Accounts {
		acct := models.NewAccount(a.Name, a.Handle, a.Password, models.Role(a.Role))
		acct.Instrument = a.Instrument
		if _, err := store.Insert(ctx, acct); err != nil {
			return res, fmt.Errorf("account %q: %w", a.Name, err)
		}
		res.Accounts++
	}

	ids := make(map[string]string, len(doc.Members))
	for _, m := range doc.Members {
		mem := models.NewRosterMember(m.Name, m.Handle, m.Role, m.Instrument)
		if m.Status != "" {
			mem.Status = models.MemberStatus(m.Status)
		}
		mem.Confirmed = m.Confirmed

		id, err := store.Insert(ctx, mem)
		if err != nil {
			return res, fmt.Errorf("member %q: %w", m.Name, err)
		}
		if m.Key != "" {
			ids[m.Key] = id
		}
		res.Members++
	}

	for _, s := range doc.Songs {
		assigned := make([]string, 0, len(s.Assigned))
		for _, a := range s.Assigned {
			if key, ok := strings.CutPrefix(a, memberRefPrefix); ok {
				a = ids[key]
			}
			assigned = append(assigned, a)
		}

		category := models.SongCategory(s.Category)
		if category == "" {
			category = models.CategoryGeneral
		}
		song := models.NewSong(s.Title, s.Artist, s.Key, category, assigned...)
		song.Notes = s.Notes
		song.ReferenceURL = s.URL
		if _, err := store.Insert(ctx, song); err != nil {
			return res, fmt.Errorf("song %q: %w", s.Title, err)
		}
		res.Songs++
	}

	for _, n := range doc.Notices {
		notice := models.NewNotice(n.Title, n.Content, n.Author, n.Category)
		notice.Pinned = n.Pinned
		if _, err := store.Insert(ctx, notice); err != nil {
			return res, fmt.Errorf("notice %q: %w", n.Title, err)
		}
		res.Notices++
	}

	for _, e := range doc.Events {
		event := models.NewEvent(e.Title, e.Date, e.Time, models.EventKind(e.Kind))
		event.Location = e.Location
		event.Notes = e.Notes
		if _, err := store.Insert(ctx, event); err != nil {
			return res, fmt.Errorf("event %q: %w", e.Title, err)
		}
		res.Events++
	}

	return res, nil
}
