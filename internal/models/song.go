package models

import (
	"errors"
	"slices"
	"strings"
)

// SongCategory says what a song is being prepared for.
type SongCategory string

const (
	CategoryRehearsal SongCategory = "Rehearsal"
	CategoryService   SongCategory = "Service"
	CategoryGeneral   SongCategory = "General"
)

var (
	ErrMissingTitle    = errors.New("title is required")
	ErrInvalidCategory = errors.New("category must be Rehearsal, Service or General")
)

// Song is a repertoire entry. AssignedIdentifiers mixes three schemes:
// "@handle", legacy member record ids and bare display names.
type Song struct {
	Base
	Title               string
	Artist              string
	Key                 string
	Category            SongCategory
	AssignedIdentifiers []string
	Notes               string
	ReferenceURL        string
}

// NewSong creates a [Song] with a copy of the given assignments.
func NewSong(title, artist, key string, category SongCategory, assigned ...string) *Song {
	return &Song{
		Base:                newBase(),
		Title:               title,
		Artist:              artist,
		Key:                 key,
		Category:            category,
		AssignedIdentifiers: slices.Clone(assigned),
	}
}

func (s *Song) Collection() Collection { return CollectionSongs }

func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrMissingTitle
	}
	switch s.Category {
	case CategoryRehearsal, CategoryService, CategoryGeneral:
	default:
		return ErrInvalidCategory
	}
	return nil
}
