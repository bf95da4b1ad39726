package sqlstore

import (
	"log/slog"

	"github.com/phrazzld/lexis/internal/store"
)

// Stores bundles every store backed by one database handle.
type Stores struct {
	Entries    *EntryStore
	Encounters *EncounterStore
	Mastered   *MasteredStore
	Metadata   *MetadataStore
}

// NewStores creates all stores on db.
func NewStores(db store.DBTX, dialect Dialect, logger *slog.Logger) *Stores {
	return &Stores{
		Entries:    NewEntryStore(db, dialect, logger),
		Encounters: NewEncounterStore(db, dialect, logger),
		Mastered:   NewMasteredStore(db, dialect, logger),
		Metadata:   NewMetadataStore(db, dialect, logger),
	}
}
