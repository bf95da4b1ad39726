package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const encounterColumns = `vocab_id, slot, day, day_gap, sentence,
	reference_google, reference_deepl, target_google, target_deepl,
	source_id, source_title, source_detail, recorded_at`

// EncounterStore implements store.EncounterStore.
type EncounterStore struct {
	conn   conn
	logger *slog.Logger
}

// NewEncounterStore creates an EncounterStore on db.
func NewEncounterStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *EncounterStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EncounterStore{
		conn:   conn{db: db, dialect: dialect},
		logger: logger.With(slog.String("component", "encounter_store")),
	}
}

var _ store.EncounterStore = (*EncounterStore)(nil)

// WithTx implements store.EncounterStore.WithTx.
func (s *EncounterStore) WithTx(tx *sql.Tx) store.EncounterStore {
	return &EncounterStore{conn: s.conn.withTx(tx), logger: s.logger}
}

// Put implements store.EncounterStore.Put.
func (s *EncounterStore) Put(ctx context.Context, enc *domain.Encounter) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if enc.Slot < 0 || enc.Slot >= domain.MaxEncounters {
		return store.NewStoreError("encounter", "put", "slot out of range", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO encounters (` + encounterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (vocab_id, slot) DO UPDATE SET
			day = excluded.day,
			day_gap = excluded.day_gap,
			sentence = excluded.sentence,
			reference_google = excluded.reference_google,
			reference_deepl = excluded.reference_deepl,
			target_google = excluded.target_google,
			target_deepl = excluded.target_deepl,
			source_id = excluded.source_id,
			source_title = excluded.source_title,
			source_detail = excluded.source_detail,
			recorded_at = excluded.recorded_at
	`
	_, err := s.conn.exec(ctx, query,
		enc.EntryID,
		enc.Slot,
		enc.Day,
		nullInt(enc.DayGap),
		enc.Sentence,
		enc.Translations.Reference.Google,
		enc.Translations.Reference.DeepL,
		enc.Translations.Target.Google,
		enc.Translations.Target.DeepL,
		nullString(enc.Source.ID),
		nullString(enc.Source.Title),
		nullString(enc.Source.Detail),
		enc.RecordedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to write encounter",
			slog.String("error", err.Error()),
			slog.String("entry_id", enc.EntryID.String()),
			slog.Int("slot", enc.Slot))
		return store.NewStoreError("encounter", "put", "failed to write encounter slot", err)
	}

	log.Debug("encounter written",
		slog.String("entry_id", enc.EntryID.String()),
		slog.Int("slot", enc.Slot),
		slog.Int("day", enc.Day))
	return nil
}

// ListByEntry implements store.EncounterStore.ListByEntry.
func (s *EncounterStore) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Encounter, error) {
	query := `SELECT ` + encounterColumns + ` FROM encounters WHERE vocab_id = ? ORDER BY slot`
	rows, err := s.conn.query(ctx, query, entryID)
	if err != nil {
		return nil, store.NewStoreError("encounter", "list", "failed to query encounters", err)
	}
	defer func() { _ = rows.Close() }()

	encounters := make([]*domain.Encounter, 0)
	for rows.Next() {
		enc, err := scanEncounter(rows)
		if err != nil {
			return nil, store.NewStoreError("encounter", "list", "failed to scan encounter", err)
		}
		encounters = append(encounters, enc)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("encounter", "list", "failed to iterate encounters", err)
	}

	return encounters, nil
}

// DeleteByEntry implements store.EncounterStore.DeleteByEntry.
func (s *EncounterStore) DeleteByEntry(ctx context.Context, entryID uuid.UUID) error {
	if _, err := s.conn.exec(ctx, `DELETE FROM encounters WHERE vocab_id = ?`, entryID); err != nil {
		return store.NewStoreError("encounter", "delete", "failed to delete encounters", err)
	}
	return nil
}

func scanEncounter(row rowScanner) (*domain.Encounter, error) {
	var (
		enc                       domain.Encounter
		gap                       sql.NullInt64
		sourceID, title, detail   sql.NullString
		refGoogle, refDeepL       string
		targetGoogle, targetDeepL string
	)

	err := row.Scan(
		&enc.EntryID,
		&enc.Slot,
		&enc.Day,
		&gap,
		&enc.Sentence,
		&refGoogle,
		&refDeepL,
		&targetGoogle,
		&targetDeepL,
		&sourceID,
		&title,
		&detail,
		&enc.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	enc.DayGap = intPtr(gap)
	enc.Translations = domain.Translations{
		Reference: domain.TranslationPair{Google: refGoogle, DeepL: refDeepL},
		Target:    domain.TranslationPair{Google: targetGoogle, DeepL: targetDeepL},
	}
	enc.Source = domain.Source{ID: sourceID.String, Title: title.String, Detail: detail.String}
	enc.RecordedAt = enc.RecordedAt.UTC()
	return &enc, nil
}
