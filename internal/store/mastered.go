package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// MasteredStore defines the interface for the mastered registry.
type MasteredStore interface {
	// Upsert stores m keyed by language and key. When a row already exists its
	// content is replaced and its ID is kept; m.ID is set to the stored ID.
	Upsert(ctx context.Context, m *domain.MasteredEntry) error

	// GetByID retrieves a mastered entry by ID.
	// Returns ErrMasteredNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error)

	// GetByKey retrieves the mastered entry with the given language and key.
	// Returns ErrMasteredNotFound if none exists.
	GetByKey(ctx context.Context, language, key string) (*domain.MasteredEntry, error)

	// ListVisible returns mastered entries without an active counterpart,
	// most recently promoted first.
	ListVisible(ctx context.Context, language string, limit int) ([]*domain.MasteredEntry, error)

	// CountVisible counts mastered entries without an active counterpart.
	CountVisible(ctx context.Context) (int, error)

	// SetBreakthrough updates the breakthrough counter of a mastered entry.
	// Returns ErrMasteredNotFound if it does not exist.
	SetBreakthrough(ctx context.Context, id uuid.UUID, count int) error

	// WithTx returns a MasteredStore that runs on tx.
	WithTx(tx *sql.Tx) MasteredStore
}
