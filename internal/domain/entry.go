package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Entry lifecycle constants.
const (
	// InitialHP is the hit-point value of a newly created or demoted entry.
	InitialHP = 3

	// EncounterHPGain is added to HP each time an existing word is seen again.
	EncounterHPGain = 2
)

// Common validation errors for Entry
var (
	ErrEntryIDEmpty       = errors.New("entry ID cannot be empty")
	ErrEntryWordEmpty     = errors.New("entry word cannot be empty")
	ErrEntryKeyMismatch   = errors.New("entry key must be the normalized word")
	ErrEntryLanguageEmpty = errors.New("entry language cannot be empty")
	ErrEntryCountInvalid  = errors.New("entry encounter count cannot be negative")
	ErrEntryHPInvalid     = errors.New("entry HP must be positive")
)

// Stats holds the auxiliary numeric slots of an entry. They are persisted and
// returned but never computed or interpreted.
type Stats struct {
	Atk *float64 `json:"atk,omitempty"`
	Def *float64 `json:"def,omitempty"`
	Res *float64 `json:"res,omitempty"`
	Spd *float64 `json:"spd,omitempty"`
}

// Entry is an active vocabulary word being learned in one language.
// The (Language, Key) pair is unique across active entries.
type Entry struct {
	ID               uuid.UUID  `json:"id"`
	Language         string     `json:"language"`
	Word             string     `json:"word"`
	Key              string     `json:"key"`
	FirstSeenDay     int        `json:"first_seen_day"`
	LastEncounterDay int        `json:"last_encounter_day"`
	EncounterCount   int        `json:"encounter_count"`
	HP               int        `json:"hp"`
	Stats            Stats      `json:"stats"`
	Breakthrough     int        `json:"breakthrough"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	Note             string     `json:"note,omitempty"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewEntry creates an entry for a word first seen on the given day.
// The word is normalized; a blank word or language fails validation.
func NewEntry(language, word string, day int, now time.Time) (*Entry, error) {
	display, key := NormalizeWord(word)
	e := &Entry{
		ID:               uuid.New(),
		Language:         NormalizeLanguage(language),
		Word:             display,
		Key:              key,
		FirstSeenDay:     day,
		LastEncounterDay: day,
		EncounterCount:   1,
		HP:               InitialHP,
		CreatedAt:        now.UTC(),
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate checks if the Entry has valid data.
func (e *Entry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEntryIDEmpty
	}

	if e.Word == "" {
		return ErrEntryWordEmpty
	}

	if _, key := NormalizeWord(e.Word); key != e.Key {
		return ErrEntryKeyMismatch
	}

	if e.Language == "" {
		return ErrEntryLanguageEmpty
	}

	if e.EncounterCount < 0 {
		return ErrEntryCountInvalid
	}

	if e.HP <= 0 {
		return ErrEntryHPInvalid
	}

	return nil
}

// Rename replaces the display word and key. History is untouched.
func (e *Entry) Rename(word string) error {
	display, key := NormalizeWord(word)
	if display == "" {
		return ErrEmptyInput
	}
	e.Word = display
	e.Key = key
	return nil
}

// Encounter applies a repeat sighting on the given day and returns the gap in
// days since the previous one. The returned subsequent count addresses the
// ring slot the new encounter occupies.
func (e *Entry) Encounter(day int) (gap, subsequent int) {
	gap = day - e.LastEncounterDay
	subsequent = e.EncounterCount
	e.EncounterCount++
	e.LastEncounterDay = day
	e.HP += EncounterHPGain
	return gap, subsequent
}
