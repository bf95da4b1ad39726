package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// EntryFilter selects and orders active entries.
type EntryFilter struct {
	// Language restricts the listing; empty means all languages.
	Language string
	Sort     domain.SortKey
	Limit    int
}

// Tally holds the aggregate counts over active entries.
type Tally struct {
	WordsByLanguage map[string]int
	TotalWords      int
	TotalEncounters int
}

// EntryStore defines the interface for active entry persistence.
type EntryStore interface {
	// Create inserts a new entry.
	// Returns ErrEntryExists if an entry with the same language and key exists.
	Create(ctx context.Context, entry *domain.Entry) error

	// GetByID retrieves an entry by ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)

	// GetByKey retrieves the entry with the given language and normalized key.
	// Returns ErrEntryNotFound if none exists.
	GetByKey(ctx context.Context, language, key string) (*domain.Entry, error)

	// Update persists every mutable field of entry.
	// Returns ErrEntryNotFound if the entry does not exist and ErrEntryExists
	// if a rename collides with another entry.
	Update(ctx context.Context, entry *domain.Entry) error

	// Delete removes the entry and its encounters and clears the parent link
	// of its children. Returns ErrEntryNotFound if the entry does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns active entries ordered by filter.Sort.
	List(ctx context.Context, filter EntryFilter) ([]*domain.Entry, error)

	// FindByKey returns entries whose normalized key equals key, optionally
	// restricted to one language.
	FindByKey(ctx context.Context, key, language string) ([]*domain.Entry, error)

	// ListChildren returns the entries whose parent is parentID, ordered by key.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Entry, error)

	// CountChildren returns how many entries name id as their parent.
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)

	// ListAboveHP returns entries whose HP is greater than minHP, highest first.
	ListAboveHP(ctx context.Context, language string, minHP, limit int) ([]*domain.Entry, error)

	// Tally aggregates counts over every active entry.
	Tally(ctx context.Context) (*Tally, error)

	// WithTx returns an EntryStore that runs on tx.
	WithTx(tx *sql.Tx) EntryStore
}
