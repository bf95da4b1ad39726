package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

const entryColumns = `id, lang, word, word_key, first_seen_day, last_encounter_day,
	encounter_count, stat_hp, stat_atk, stat_def, stat_res, stat_spd,
	breakthrough, parent_id, note, last_reviewed_at, created_at`

// entryOrder holds the ORDER BY clause of each listing order. The trailing
// id keeps results deterministic when every other key ties.
var entryOrder = map[domain.SortKey]string{
	domain.SortLastEncounter:  "last_encounter_day DESC, created_at DESC, id",
	domain.SortFirstEncounter: "first_seen_day ASC, created_at ASC, id",
	domain.SortEncounterCount: "encounter_count DESC, last_encounter_day DESC, created_at DESC, id",
	domain.SortLastReviewed:   "last_reviewed_at DESC NULLS LAST, last_encounter_day DESC, id",
	domain.SortAlphabetical:   "word_key ASC, id",
}

// EntryStore implements store.EntryStore.
type EntryStore struct {
	conn   conn
	logger *slog.Logger
}

// NewEntryStore creates an EntryStore on db.
// If logger is nil, the default logger is used.
func NewEntryStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *EntryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if dialect == nil {
		panic("dialect cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EntryStore{
		conn:   conn{db: db, dialect: dialect},
		logger: logger.With(slog.String("component", "entry_store")),
	}
}

var _ store.EntryStore = (*EntryStore)(nil)

// WithTx implements store.EntryStore.WithTx.
func (s *EntryStore) WithTx(tx *sql.Tx) store.EntryStore {
	return &EntryStore{conn: s.conn.withTx(tx), logger: s.logger}
}

// Create implements store.EntryStore.Create.
func (s *EntryStore) Create(ctx context.Context, e *domain.Entry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		log.Warn("entry validation failed during create",
			slog.String("error", err.Error()),
			slog.String("entry_id", e.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO vocabulary (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.conn.exec(ctx, query,
		e.ID,
		e.Language,
		e.Word,
		e.Key,
		e.FirstSeenDay,
		e.LastEncounterDay,
		e.EncounterCount,
		e.HP,
		nullFloat(e.Stats.Atk),
		nullFloat(e.Stats.Def),
		nullFloat(e.Stats.Res),
		nullFloat(e.Stats.Spd),
		e.Breakthrough,
		nullUUID(e.ParentID),
		nullString(e.Note),
		nullTime(e.LastReviewedAt),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("entry already exists",
				slog.String("language", e.Language),
				slog.String("key", e.Key))
			return fmt.Errorf("%w: %w", store.ErrEntryExists, err)
		}
		log.Error("failed to create entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", e.ID.String()))
		return store.NewStoreError("entry", "create", "failed to insert entry", err)
	}

	log.Debug("entry created",
		slog.String("entry_id", e.ID.String()),
		slog.String("language", e.Language),
		slog.String("word", e.Word))
	return nil
}

// GetByID implements store.EntryStore.GetByID.
func (s *EntryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vocabulary WHERE id = ?`
	return s.getOne(ctx, query, id)
}

// GetByKey implements store.EntryStore.GetByKey.
func (s *EntryStore) GetByKey(ctx context.Context, language, key string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vocabulary WHERE lang = ? AND word_key = ?`
	return s.getOne(ctx, query, language, key)
}

func (s *EntryStore) getOne(ctx context.Context, query string, args ...any) (*domain.Entry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	e, err := scanEntry(s.conn.queryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEntryNotFound
		}
		log.Error("failed to get entry", slog.String("error", err.Error()))
		return nil, store.NewStoreError("entry", "get", "failed to read entry", s.conn.dialect.MapError(err))
	}
	return e, nil
}

// Update implements store.EntryStore.Update.
func (s *EntryStore) Update(ctx context.Context, e *domain.Entry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		log.Warn("entry validation failed during update",
			slog.String("error", err.Error()),
			slog.String("entry_id", e.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE vocabulary
		SET word = ?, word_key = ?, last_encounter_day = ?, encounter_count = ?,
			stat_hp = ?, stat_atk = ?, stat_def = ?, stat_res = ?, stat_spd = ?,
			breakthrough = ?, parent_id = ?, note = ?, last_reviewed_at = ?
		WHERE id = ?
	`
	result, err := s.conn.exec(ctx, query,
		e.Word,
		e.Key,
		e.LastEncounterDay,
		e.EncounterCount,
		e.HP,
		nullFloat(e.Stats.Atk),
		nullFloat(e.Stats.Def),
		nullFloat(e.Stats.Res),
		nullFloat(e.Stats.Spd),
		e.Breakthrough,
		nullUUID(e.ParentID),
		nullString(e.Note),
		nullTime(e.LastReviewedAt),
		e.ID,
	)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("%w: %w", store.ErrEntryExists, err)
		}
		log.Error("failed to update entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", e.ID.String()))
		return store.NewStoreError("entry", "update", "failed to update entry", err)
	}

	if err := CheckRowsAffected(result, store.ErrEntryNotFound); err != nil {
		return err
	}

	log.Debug("entry updated",
		slog.String("entry_id", e.ID.String()),
		slog.Int("hp", e.HP),
		slog.Int("encounter_count", e.EncounterCount))
	return nil
}

// Delete implements store.EntryStore.Delete.
func (s *EntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.conn.exec(ctx, `UPDATE vocabulary SET parent_id = NULL WHERE parent_id = ?`, id); err != nil {
		return store.NewStoreError("entry", "delete", "failed to detach children", err)
	}

	if _, err := s.conn.exec(ctx, `DELETE FROM encounters WHERE vocab_id = ?`, id); err != nil {
		return store.NewStoreError("entry", "delete", "failed to delete encounters", err)
	}

	result, err := s.conn.exec(ctx, `DELETE FROM vocabulary WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", id.String()))
		return store.NewStoreError("entry", "delete", "failed to delete entry", err)
	}

	if err := CheckRowsAffected(result, store.ErrEntryNotFound); err != nil {
		return err
	}

	log.Debug("entry deleted", slog.String("entry_id", id.String()))
	return nil
}

// List implements store.EntryStore.List.
func (s *EntryStore) List(ctx context.Context, filter store.EntryFilter) ([]*domain.Entry, error) {
	order, ok := entryOrder[filter.Sort]
	if !ok {
		order = entryOrder[domain.SortLastEncounter]
	}

	var (
		where []string
		args  []any
	)
	if filter.Language != "" {
		where = append(where, "lang = ?")
		args = append(args, filter.Language)
	}

	query := `SELECT ` + entryColumns + ` FROM vocabulary` + whereClause(where) +
		` ORDER BY ` + order + ` LIMIT ?`
	args = append(args, filter.Limit)

	return s.list(ctx, "list", query, args...)
}

// FindByKey implements store.EntryStore.FindByKey.
func (s *EntryStore) FindByKey(ctx context.Context, key, language string) ([]*domain.Entry, error) {
	where := []string{"word_key = ?"}
	args := []any{key}
	if language != "" {
		where = append(where, "lang = ?")
		args = append(args, language)
	}

	query := `SELECT ` + entryColumns + ` FROM vocabulary` + whereClause(where) + ` ORDER BY lang, id`
	return s.list(ctx, "search", query, args...)
}

// ListChildren implements store.EntryStore.ListChildren.
func (s *EntryStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vocabulary WHERE parent_id = ? ORDER BY word_key, id`
	return s.list(ctx, "children", query, parentID)
}

// CountChildren implements store.EntryStore.CountChildren.
func (s *EntryStore) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := s.conn.queryRow(ctx, `SELECT COUNT(*) FROM vocabulary WHERE parent_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("entry", "count_children", "failed to count children", s.conn.dialect.MapError(err))
	}
	return n, nil
}

// ListAboveHP implements store.EntryStore.ListAboveHP.
func (s *EntryStore) ListAboveHP(ctx context.Context, language string, minHP, limit int) ([]*domain.Entry, error) {
	where := []string{"stat_hp > ?"}
	args := []any{minHP}
	if language != "" {
		where = append(where, "lang = ?")
		args = append(args, language)
	}

	query := `SELECT ` + entryColumns + ` FROM vocabulary` + whereClause(where) +
		` ORDER BY stat_hp DESC, last_encounter_day DESC, id LIMIT ?`
	args = append(args, limit)

	return s.list(ctx, "struggling", query, args...)
}

// Tally implements store.EntryStore.Tally.
func (s *EntryStore) Tally(ctx context.Context) (*store.Tally, error) {
	rows, err := s.conn.query(ctx, `
		SELECT lang, COUNT(*), COALESCE(SUM(encounter_count), 0)
		FROM vocabulary
		GROUP BY lang
		ORDER BY lang
	`)
	if err != nil {
		return nil, store.NewStoreError("entry", "tally", "failed to aggregate entries", err)
	}
	defer func() { _ = rows.Close() }()

	tally := &store.Tally{WordsByLanguage: make(map[string]int)}
	for rows.Next() {
		var (
			lang              string
			words, encounters int
		)
		if err := rows.Scan(&lang, &words, &encounters); err != nil {
			return nil, store.NewStoreError("entry", "tally", "failed to scan aggregate", err)
		}
		tally.WordsByLanguage[lang] = words
		tally.TotalWords += words
		tally.TotalEncounters += encounters
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("entry", "tally", "failed to iterate aggregate", err)
	}

	return tally, nil
}

func (s *EntryStore) list(ctx context.Context, op, query string, args ...any) ([]*domain.Entry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.conn.query(ctx, query, args...)
	if err != nil {
		log.Error("failed to query entries",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("entry", op, "failed to query entries", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, store.NewStoreError("entry", op, "failed to scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("entry", op, "failed to iterate entries", err)
	}

	return entries, nil
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		e                  domain.Entry
		atk, def, res, spd sql.NullFloat64
		parent             uuid.NullUUID
		note               sql.NullString
		lastReviewed       sql.NullTime
	)

	err := row.Scan(
		&e.ID,
		&e.Language,
		&e.Word,
		&e.Key,
		&e.FirstSeenDay,
		&e.LastEncounterDay,
		&e.EncounterCount,
		&e.HP,
		&atk,
		&def,
		&res,
		&spd,
		&e.Breakthrough,
		&parent,
		&note,
		&lastReviewed,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Stats = domain.Stats{Atk: floatPtr(atk), Def: floatPtr(def), Res: floatPtr(res), Spd: floatPtr(spd)}
	e.ParentID = uuidPtr(parent)
	e.Note = note.String
	e.LastReviewedAt = timePtr(lastReviewed)
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
