package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// EncounterStore defines the interface for encounter slot persistence.
type EncounterStore interface {
	// Put writes enc into its slot, replacing whatever the slot held.
	Put(ctx context.Context, enc *domain.Encounter) error

	// ListByEntry returns the stored encounters of an entry in slot order.
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Encounter, error)

	// DeleteByEntry removes every encounter of an entry.
	DeleteByEntry(ctx context.Context, entryID uuid.UUID) error

	// WithTx returns an EncounterStore that runs on tx.
	WithTx(tx *sql.Tx) EncounterStore
}
