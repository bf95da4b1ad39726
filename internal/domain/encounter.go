package domain

import (
	"time"

	"github.com/google/uuid"
)

// TranslationPair holds one sentence as rendered by the two translation providers.
type TranslationPair struct {
	Google string `json:"google"`
	DeepL  string `json:"deepl"`
}

// IsZero reports whether neither provider supplied a rendering.
func (p TranslationPair) IsZero() bool {
	return p.Google == "" && p.DeepL == ""
}

// Translations pairs the reference-language rendering of an encounter sentence
// with the rendering in the entry's own language.
type Translations struct {
	Reference TranslationPair `json:"reference"`
	Target    TranslationPair `json:"target"`
}

// Source identifies where an encounter happened. Detail is an opaque blob
// supplied by the caller and stored without interpretation.
type Source struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Encounter is one recorded sighting of a word, held in a fixed ring slot.
// Slot 0 is the first-ever encounter and is never overwritten; DayGap is nil there.
type Encounter struct {
	EntryID      uuid.UUID    `json:"entry_id"`
	Slot         int          `json:"slot"`
	Day          int          `json:"day"`
	DayGap       *int         `json:"day_gap,omitempty"`
	Sentence     string       `json:"sentence"`
	Translations Translations `json:"translations"`
	Source       Source       `json:"source"`
	RecordedAt   time.Time    `json:"recorded_at"`
}

// Snapshot copies the encounter into the form preserved by the mastered registry.
func (e *Encounter) Snapshot() *EncounterSnapshot {
	return &EncounterSnapshot{
		Day:          e.Day,
		Sentence:     e.Sentence,
		Translations: e.Translations,
		Source:       e.Source,
	}
}
