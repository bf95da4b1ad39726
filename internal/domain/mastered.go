package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for MasteredEntry
var (
	ErrMasteredIDEmpty       = errors.New("mastered entry ID cannot be empty")
	ErrMasteredWordEmpty     = errors.New("mastered entry word cannot be empty")
	ErrMasteredLanguageEmpty = errors.New("mastered entry language cannot be empty")
)

// EncounterSnapshot is the part of an encounter preserved across promotion.
type EncounterSnapshot struct {
	Day          int          `json:"day"`
	Sentence     string       `json:"sentence"`
	Translations Translations `json:"translations"`
	Source       Source       `json:"source"`
}

// MasteredEntry records a word whose HP reached zero. The row is idempotent
// per (Language, Key) and survives demotion so the breakthrough counter keeps
// growing across cycles.
type MasteredEntry struct {
	ID                uuid.UUID          `json:"id"`
	Language          string             `json:"language"`
	Word              string             `json:"word"`
	Key               string             `json:"key"`
	FirstEncounterDay int                `json:"first_encounter_day"`
	FirstEncounter    *EncounterSnapshot `json:"first_encounter,omitempty"`
	LastEncounterDay  int                `json:"last_encounter_day"`
	LastEncounter     *EncounterSnapshot `json:"last_encounter,omitempty"`
	TotalEncounters   int                `json:"total_encounters"`
	BreakthroughCount int                `json:"breakthrough_count"`
	PromotedAt        time.Time          `json:"promoted_at"`
}

// Validate checks if the MasteredEntry has valid data.
func (m *MasteredEntry) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMasteredIDEmpty
	}
	if m.Word == "" || m.Key == "" {
		return ErrMasteredWordEmpty
	}
	if m.Language == "" {
		return ErrMasteredLanguageEmpty
	}
	return nil
}

// Master builds the registry record for an entry being promoted. first and
// last are the slot-0 and highest-slot encounters and may be nil for entries
// that were added manually.
func Master(e *Entry, first, last *Encounter, now time.Time) *MasteredEntry {
	m := &MasteredEntry{
		ID:                uuid.New(),
		Language:          e.Language,
		Word:              e.Word,
		Key:               e.Key,
		FirstEncounterDay: e.FirstSeenDay,
		LastEncounterDay:  e.LastEncounterDay,
		TotalEncounters:   e.EncounterCount,
		BreakthroughCount: e.Breakthrough,
		PromotedAt:        now.UTC(),
	}
	if first != nil {
		m.FirstEncounter = first.Snapshot()
		m.FirstEncounterDay = first.Day
	}
	if last != nil {
		m.LastEncounter = last.Snapshot()
	}
	return m
}

// Revive builds the active entry that replaces a mastered word on demotion.
// The returned encounter restores slot 0 from the first-encounter snapshot and
// is nil when no snapshot was kept.
func (m *MasteredEntry) Revive(today int, now time.Time) (*Entry, *Encounter) {
	e := &Entry{
		ID:               uuid.New(),
		Language:         m.Language,
		Word:             m.Word,
		Key:              m.Key,
		FirstSeenDay:     m.FirstEncounterDay,
		LastEncounterDay: today,
		EncounterCount:   m.TotalEncounters,
		HP:               InitialHP,
		Breakthrough:     m.BreakthroughCount + 1,
		CreatedAt:        now.UTC(),
	}
	if e.EncounterCount < 1 {
		e.EncounterCount = 1
	}

	if m.FirstEncounter == nil {
		return e, nil
	}

	snap := m.FirstEncounter
	return e, &Encounter{
		EntryID:      e.ID,
		Slot:         FirstSlot,
		Day:          snap.Day,
		Sentence:     snap.Sentence,
		Translations: snap.Translations,
		Source:       snap.Source,
		RecordedAt:   now.UTC(),
	}
}
