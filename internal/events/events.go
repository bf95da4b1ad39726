package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a lifecycle transition.
type Type string

// Lifecycle event types
const (
	EntryCreated     Type = "entry.created"
	EntryEncountered Type = "entry.encountered"
	EntryPromoted    Type = "entry.promoted"
	EntryDemoted     Type = "entry.demoted"
	EntryDeleted     Type = "entry.deleted"
)

// Event describes one committed change to the vocabulary.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type Type `json:"type"`

	// EntryID is the active entry the event concerns. For promotions it is the
	// entry that left the active set; for demotions the one that was created.
	EntryID uuid.UUID `json:"entry_id"`

	Language string `json:"language"`
	Word     string `json:"word"`

	// Payload holds type-specific details serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event. A nil payload leaves Payload empty.
func NewEvent(
	eventType Type,
	entryID uuid.UUID,
	language, word string,
	payload interface{},
	now time.Time,
) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		EntryID:    entryID,
		Language:   language,
		Word:       word,
		Payload:    raw,
		OccurredAt: now.UTC(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events without knowledge of their handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// Discard is an EventEmitter that drops every event.
var Discard EventEmitter = discard{}

type discard struct{}

func (discard) EmitEvent(context.Context, *Event) error { return nil }
