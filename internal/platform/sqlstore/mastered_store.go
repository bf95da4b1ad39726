package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const masteredColumns = `m.id, m.lang, m.word, m.word_key, m.first_encounter_day, m.first_encounter,
	m.last_encounter_day, m.last_encounter, m.total_encounters, m.breakthrough_count, m.promoted_at`

// notShadowed excludes mastered rows that have an active counterpart.
const notShadowed = `NOT EXISTS (
	SELECT 1 FROM vocabulary v WHERE v.lang = m.lang AND v.word_key = m.word_key
)`

// MasteredStore implements store.MasteredStore.
type MasteredStore struct {
	conn   conn
	logger *slog.Logger
}

// NewMasteredStore creates a MasteredStore on db.
func NewMasteredStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *MasteredStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MasteredStore{
		conn:   conn{db: db, dialect: dialect},
		logger: logger.With(slog.String("component", "mastered_store")),
	}
}

var _ store.MasteredStore = (*MasteredStore)(nil)

// WithTx implements store.MasteredStore.WithTx.
func (s *MasteredStore) WithTx(tx *sql.Tx) store.MasteredStore {
	return &MasteredStore{conn: s.conn.withTx(tx), logger: s.logger}
}

// Upsert implements store.MasteredStore.Upsert.
func (s *MasteredStore) Upsert(ctx context.Context, m *domain.MasteredEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	first, err := encodeSnapshot(m.FirstEncounter)
	if err != nil {
		return store.NewStoreError("mastered", "upsert", "failed to encode first encounter", err)
	}
	last, err := encodeSnapshot(m.LastEncounter)
	if err != nil {
		return store.NewStoreError("mastered", "upsert", "failed to encode last encounter", err)
	}

	query := `
		INSERT INTO mastered (id, lang, word, word_key, first_encounter_day, first_encounter,
			last_encounter_day, last_encounter, total_encounters, breakthrough_count, promoted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lang, word_key) DO UPDATE SET
			word = excluded.word,
			first_encounter_day = excluded.first_encounter_day,
			first_encounter = excluded.first_encounter,
			last_encounter_day = excluded.last_encounter_day,
			last_encounter = excluded.last_encounter,
			total_encounters = excluded.total_encounters,
			breakthrough_count = excluded.breakthrough_count,
			promoted_at = excluded.promoted_at
		RETURNING id
	`
	var id uuid.UUID
	err = s.conn.queryRow(ctx, query,
		m.ID,
		m.Language,
		m.Word,
		m.Key,
		m.FirstEncounterDay,
		first,
		m.LastEncounterDay,
		last,
		m.TotalEncounters,
		m.BreakthroughCount,
		m.PromotedAt.UTC(),
	).Scan(&id)
	if err != nil {
		log.Error("failed to upsert mastered entry",
			slog.String("error", err.Error()),
			slog.String("language", m.Language),
			slog.String("key", m.Key))
		return store.NewStoreError("mastered", "upsert", "failed to write mastered entry", s.conn.dialect.MapError(err))
	}

	m.ID = id
	log.Debug("mastered entry stored",
		slog.String("mastered_id", id.String()),
		slog.String("language", m.Language),
		slog.String("word", m.Word))
	return nil
}

// GetByID implements store.MasteredStore.GetByID.
func (s *MasteredStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error) {
	return s.getOne(ctx, `SELECT `+masteredColumns+` FROM mastered m WHERE m.id = ?`, id)
}

// GetByKey implements store.MasteredStore.GetByKey.
func (s *MasteredStore) GetByKey(ctx context.Context, language, key string) (*domain.MasteredEntry, error) {
	return s.getOne(ctx, `SELECT `+masteredColumns+` FROM mastered m WHERE m.lang = ? AND m.word_key = ?`, language, key)
}

func (s *MasteredStore) getOne(ctx context.Context, query string, args ...any) (*domain.MasteredEntry, error) {
	m, err := scanMastered(s.conn.queryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMasteredNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get mastered entry",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("mastered", "get", "failed to read mastered entry", s.conn.dialect.MapError(err))
	}
	return m, nil
}

// ListVisible implements store.MasteredStore.ListVisible.
func (s *MasteredStore) ListVisible(ctx context.Context, language string, limit int) ([]*domain.MasteredEntry, error) {
	where := []string{notShadowed}
	args := []any{}
	if language != "" {
		where = append(where, "m.lang = ?")
		args = append(args, language)
	}
	args = append(args, limit)

	query := `SELECT ` + masteredColumns + ` FROM mastered m` + whereClause(where) +
		` ORDER BY m.promoted_at DESC, m.id LIMIT ?`

	rows, err := s.conn.query(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("mastered", "list", "failed to query mastered entries", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.MasteredEntry, 0)
	for rows.Next() {
		m, err := scanMastered(rows)
		if err != nil {
			return nil, store.NewStoreError("mastered", "list", "failed to scan mastered entry", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("mastered", "list", "failed to iterate mastered entries", err)
	}

	return entries, nil
}

// CountVisible implements store.MasteredStore.CountVisible.
func (s *MasteredStore) CountVisible(ctx context.Context) (int, error) {
	var n int
	err := s.conn.queryRow(ctx, `SELECT COUNT(*) FROM mastered m WHERE `+notShadowed).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("mastered", "count", "failed to count mastered entries", s.conn.dialect.MapError(err))
	}
	return n, nil
}

// SetBreakthrough implements store.MasteredStore.SetBreakthrough.
func (s *MasteredStore) SetBreakthrough(ctx context.Context, id uuid.UUID, count int) error {
	result, err := s.conn.exec(ctx, `UPDATE mastered SET breakthrough_count = ? WHERE id = ?`, count, id)
	if err != nil {
		return store.NewStoreError("mastered", "set_breakthrough", "failed to update breakthrough", err)
	}
	return CheckRowsAffected(result, store.ErrMasteredNotFound)
}

func scanMastered(row rowScanner) (*domain.MasteredEntry, error) {
	var (
		m           domain.MasteredEntry
		first, last sql.NullString
	)

	err := row.Scan(
		&m.ID,
		&m.Language,
		&m.Word,
		&m.Key,
		&m.FirstEncounterDay,
		&first,
		&m.LastEncounterDay,
		&last,
		&m.TotalEncounters,
		&m.BreakthroughCount,
		&m.PromotedAt,
	)
	if err != nil {
		return nil, err
	}

	if m.FirstEncounter, err = decodeSnapshot(first); err != nil {
		return nil, err
	}
	if m.LastEncounter, err = decodeSnapshot(last); err != nil {
		return nil, err
	}
	m.PromotedAt = m.PromotedAt.UTC()
	return &m, nil
}

func encodeSnapshot(snap *domain.EncounterSnapshot) (sql.NullString, error) {
	if snap == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeSnapshot(raw sql.NullString) (*domain.EncounterSnapshot, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var snap domain.EncounterSnapshot
	if err := json.Unmarshal([]byte(raw.String), &snap); err != nil {
		return nil, fmt.Errorf("decode encounter snapshot: %w", err)
	}
	return &snap, nil
}
