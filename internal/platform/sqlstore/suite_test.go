package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/phrazzld/lexis/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)

// runStoreSuite exercises every store against a fresh database from newDB.
// The same suite runs on SQLite and, in integration builds, on PostgreSQL.
func runStoreSuite(t *testing.T, newDB func(t *testing.T) *testdb.DB) {
	t.Run("entry create and get", func(t *testing.T) { testEntryCreateGet(t, newDB(t)) })
	t.Run("entry update", func(t *testing.T) { testEntryUpdate(t, newDB(t)) })
	t.Run("entry list orders", func(t *testing.T) { testEntryListOrders(t, newDB(t)) })
	t.Run("entry search", func(t *testing.T) { testEntrySearch(t, newDB(t)) })
	t.Run("entry children and delete", func(t *testing.T) { testEntryChildrenDelete(t, newDB(t)) })
	t.Run("entry struggling and tally", func(t *testing.T) { testEntryStrugglingTally(t, newDB(t)) })
	t.Run("encounter slots", func(t *testing.T) { testEncounterSlots(t, newDB(t)) })
	t.Run("mastered upsert and visibility", func(t *testing.T) { testMastered(t, newDB(t)) })
	t.Run("metadata", func(t *testing.T) { testMetadata(t, newDB(t)) })
	t.Run("transaction rollback", func(t *testing.T) { testRollback(t, newDB(t)) })
}

func newEntry(t *testing.T, lang, word string, day int) *domain.Entry {
	t.Helper()
	e, err := domain.NewEntry(lang, word, day, baseTime.Add(time.Duration(day)*time.Hour))
	require.NoError(t, err)
	return e
}

func mustCreate(t *testing.T, s *sqlstore.Stores, e *domain.Entry) *domain.Entry {
	t.Helper()
	require.NoError(t, s.Entries.Create(context.Background(), e))
	return e
}

func keys(entries []*domain.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func testEntryCreateGet(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	atk := 1.5
	e := newEntry(t, "es", "  Hola ", 3)
	e.Stats.Atk = &atk
	e.Note = "greeting"
	mustCreate(t, s, e)

	got, err := s.Entries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hola", got.Word)
	assert.Equal(t, "hola", got.Key)
	assert.Equal(t, "es", got.Language)
	assert.Equal(t, 3, got.FirstSeenDay)
	assert.Equal(t, domain.InitialHP, got.HP)
	assert.Equal(t, 1, got.EncounterCount)
	require.NotNil(t, got.Stats.Atk)
	assert.InDelta(t, 1.5, *got.Stats.Atk, 0.0001)
	assert.Nil(t, got.Stats.Def)
	assert.Nil(t, got.ParentID)
	assert.Nil(t, got.LastReviewedAt)
	assert.Equal(t, "greeting", got.Note)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	byKey, err := s.Entries.GetByKey(ctx, "es", "hola")
	require.NoError(t, err)
	assert.Equal(t, e.ID, byKey.ID)

	_, err = s.Entries.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
	assert.True(t, store.IsNotFoundError(err))

	dup := newEntry(t, "es", "HOLA", 4)
	err = s.Entries.Create(ctx, dup)
	assert.ErrorIs(t, err, store.ErrEntryExists)
	assert.True(t, store.IsDuplicateError(err))

	// The same key in another language is a different entry.
	mustCreate(t, s, newEntry(t, "pt", "hola", 4))

	invalid := newEntry(t, "es", "adios", 4)
	invalid.Key = "something-else"
	assert.ErrorIs(t, s.Entries.Create(ctx, invalid), store.ErrInvalidEntity)
}

func testEntryUpdate(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	e := mustCreate(t, s, newEntry(t, "es", "gato", 1))
	other := mustCreate(t, s, newEntry(t, "es", "perro", 1))

	reviewed := baseTime.Add(48 * time.Hour)
	e.Encounter(5)
	e.LastReviewedAt = &reviewed
	e.ParentID = &other.ID
	e.Note = "cat"
	require.NoError(t, s.Entries.Update(ctx, e))

	got, err := s.Entries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.EncounterCount)
	assert.Equal(t, 5, got.HP)
	assert.Equal(t, 5, got.LastEncounterDay)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, other.ID, *got.ParentID)
	require.NotNil(t, got.LastReviewedAt)
	assert.True(t, reviewed.Equal(*got.LastReviewedAt))
	assert.Equal(t, "cat", got.Note)

	require.NoError(t, e.Rename("Perro"))
	assert.ErrorIs(t, s.Entries.Update(ctx, e), store.ErrEntryExists)

	ghost := newEntry(t, "es", "fantasma", 1)
	assert.ErrorIs(t, s.Entries.Update(ctx, ghost), store.ErrEntryNotFound)
}

func testEntryListOrders(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	a := newEntry(t, "es", "beta", 1)
	b := newEntry(t, "es", "alfa", 2)
	c := newEntry(t, "es", "gamma", 3)
	a.Encounter(4)
	a.Encounter(6)
	reviewed := baseTime
	b.LastReviewedAt = &reviewed
	for _, e := range []*domain.Entry{a, b, c} {
		mustCreate(t, s, e)
	}
	mustCreate(t, s, newEntry(t, "de", "delta", 9))

	tests := []struct {
		sort domain.SortKey
		want []string
	}{
		{domain.SortLastEncounter, []string{"beta", "gamma", "alfa"}},
		{domain.SortFirstEncounter, []string{"beta", "alfa", "gamma"}},
		{domain.SortEncounterCount, []string{"beta", "gamma", "alfa"}},
		{domain.SortLastReviewed, []string{"alfa", "beta", "gamma"}},
		{domain.SortAlphabetical, []string{"alfa", "beta", "gamma"}},
	}
	for _, tt := range tests {
		got, err := s.Entries.List(ctx, store.EntryFilter{Language: "es", Sort: tt.sort, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, tt.want, keys(got), "sort %s", tt.sort)
	}

	all, err := s.Entries.List(ctx, store.EntryFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"delta", "beta"}, keys(all))
}

func testEntrySearch(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	mustCreate(t, s, newEntry(t, "es", "casa", 1))
	mustCreate(t, s, newEntry(t, "pt", "Casa", 1))
	mustCreate(t, s, newEntry(t, "es", "casas", 1))

	got, err := s.Entries.FindByKey(ctx, "casa", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "es", got[0].Language)
	assert.Equal(t, "pt", got[1].Language)

	got, err = s.Entries.FindByKey(ctx, "casa", "pt")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Casa", got[0].Word)

	got, err = s.Entries.FindByKey(ctx, "nada", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testEntryChildrenDelete(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	parent := mustCreate(t, s, newEntry(t, "es", "comer", 1))
	for _, w := range []string{"comido", "comiendo"} {
		child := newEntry(t, "es", w, 1)
		child.ParentID = &parent.ID
		mustCreate(t, s, child)
	}

	children, err := s.Entries.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"comido", "comiendo"}, keys(children))

	n, err := s.Entries.CountChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Encounters.Put(ctx, &domain.Encounter{
		EntryID: parent.ID, Slot: 0, Day: 1, Sentence: "Voy a comer.", RecordedAt: baseTime,
	}))

	require.NoError(t, s.Entries.Delete(ctx, parent.ID))
	assert.ErrorIs(t, s.Entries.Delete(ctx, parent.ID), store.ErrEntryNotFound)

	encounters, err := s.Encounters.ListByEntry(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, encounters)

	child, err := s.Entries.GetByKey(ctx, "es", "comido")
	require.NoError(t, err)
	assert.Nil(t, child.ParentID)
}

func testEntryStrugglingTally(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	easy := newEntry(t, "es", "sí", 1)
	hard := newEntry(t, "es", "desafortunadamente", 1)
	harder := newEntry(t, "fr", "malheureusement", 1)
	hard.Encounter(2)
	harder.Encounter(2)
	harder.Encounter(3)
	for _, e := range []*domain.Entry{easy, hard, harder} {
		mustCreate(t, s, e)
	}

	got, err := s.Entries.ListAboveHP(ctx, "", 4, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"malheureusement", "desafortunadamente"}, keys(got))

	got, err = s.Entries.ListAboveHP(ctx, "es", 4, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"desafortunadamente"}, keys(got))

	tally, err := s.Entries.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"es": 2, "fr": 1}, tally.WordsByLanguage)
	assert.Equal(t, 3, tally.TotalWords)
	assert.Equal(t, 6, tally.TotalEncounters)
}

func testEncounterSlots(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	e := mustCreate(t, s, newEntry(t, "es", "luz", 0))
	gap := 4
	first := &domain.Encounter{
		EntryID:  e.ID,
		Slot:     0,
		Day:      0,
		Sentence: "Hay luz.",
		Translations: domain.Translations{
			Reference: domain.TranslationPair{Google: "There is light.", DeepL: "There's light."},
			Target:    domain.TranslationPair{Google: "Hay luz."},
		},
		Source:     domain.Source{ID: "w1", Title: "Work", Detail: `{"series":"s"}`},
		RecordedAt: baseTime,
	}
	require.NoError(t, s.Encounters.Put(ctx, first))
	require.NoError(t, s.Encounters.Put(ctx, &domain.Encounter{
		EntryID: e.ID, Slot: 1, Day: 4, DayGap: &gap, Sentence: "old", RecordedAt: baseTime,
	}))
	require.NoError(t, s.Encounters.Put(ctx, &domain.Encounter{
		EntryID: e.ID, Slot: 1, Day: 9, DayGap: &gap, Sentence: "new", RecordedAt: baseTime,
	}))

	got, err := s.Encounters.ListByEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Slot)
	assert.Nil(t, got[0].DayGap)
	assert.Equal(t, first.Translations, got[0].Translations)
	assert.Equal(t, first.Source, got[0].Source)

	assert.Equal(t, 1, got[1].Slot)
	assert.Equal(t, 9, got[1].Day)
	assert.Equal(t, "new", got[1].Sentence)
	require.NotNil(t, got[1].DayGap)
	assert.Equal(t, 4, *got[1].DayGap)
	assert.Equal(t, domain.Source{}, got[1].Source)

	err = s.Encounters.Put(ctx, &domain.Encounter{EntryID: e.ID, Slot: domain.MaxEncounters, RecordedAt: baseTime})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	require.NoError(t, s.Encounters.DeleteByEntry(ctx, e.ID))
	got, err = s.Encounters.ListByEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testMastered(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	e := newEntry(t, "es", "sol", 2)
	e.Breakthrough = 1
	first := &domain.Encounter{EntryID: e.ID, Day: 2, Sentence: "El sol.", RecordedAt: baseTime}
	m := domain.Master(e, first, nil, baseTime)
	originalID := m.ID
	require.NoError(t, s.Mastered.Upsert(ctx, m))
	assert.Equal(t, originalID, m.ID)

	got, err := s.Mastered.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "sol", got.Key)
	assert.Equal(t, 1, got.BreakthroughCount)
	require.NotNil(t, got.FirstEncounter)
	assert.Equal(t, "El sol.", got.FirstEncounter.Sentence)
	assert.Nil(t, got.LastEncounter)

	again := domain.Master(e, first, first, baseTime.Add(time.Hour))
	again.BreakthroughCount = 3
	require.NoError(t, s.Mastered.Upsert(ctx, again))
	assert.Equal(t, originalID, again.ID, "upsert keeps the stored id")

	got, err = s.Mastered.GetByKey(ctx, "es", "sol")
	require.NoError(t, err)
	assert.Equal(t, 3, got.BreakthroughCount)
	require.NotNil(t, got.LastEncounter)

	other := domain.Master(newEntry(t, "es", "luna", 1), nil, nil, baseTime.Add(2*time.Hour))
	require.NoError(t, s.Mastered.Upsert(ctx, other))

	visible, err := s.Mastered.ListVisible(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "luna", visible[0].Key)

	// An active entry with the same key hides the mastered row.
	mustCreate(t, s, newEntry(t, "es", "Sol", 5))
	visible, err = s.Mastered.ListVisible(ctx, "es", 10)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "luna", visible[0].Key)

	n, err := s.Mastered.CountVisible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Mastered.SetBreakthrough(ctx, originalID, 7))
	got, err = s.Mastered.GetByID(ctx, originalID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.BreakthroughCount)

	assert.ErrorIs(t, s.Mastered.SetBreakthrough(ctx, uuid.New(), 1), store.ErrMasteredNotFound)
	_, err = s.Mastered.GetByKey(ctx, "es", "nada")
	assert.ErrorIs(t, err, store.ErrMasteredNotFound)
}

func testMetadata(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)

	_, err := s.Metadata.Get(ctx, store.MetadataEpoch)
	assert.ErrorIs(t, err, store.ErrMetadataNotFound)

	value, err := s.Metadata.SetIfAbsent(ctx, store.MetadataEpoch, "2025-10-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-10", value)

	value, err = s.Metadata.SetIfAbsent(ctx, store.MetadataEpoch, "2030-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-10", value, "an existing value wins")

	require.NoError(t, s.Metadata.Set(ctx, store.MetadataSchemaVersion, "1"))
	require.NoError(t, s.Metadata.Set(ctx, store.MetadataSchemaVersion, "2"))
	value, err = s.Metadata.Get(ctx, store.MetadataSchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func testRollback(t *testing.T, db *testdb.DB) {
	ctx := context.Background()
	s := sqlstore.NewStores(db.DB, db.Dialect, nil)
	boom := errors.New("boom")

	e := newEntry(t, "es", "agua", 1)
	err := store.RunInTransaction(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.Entries.WithTx(tx).Create(ctx, e); err != nil {
			return err
		}
		if err := s.Encounters.WithTx(tx).Put(ctx, &domain.Encounter{
			EntryID: e.ID, Slot: 0, Day: 1, RecordedAt: baseTime,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Entries.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
	encounters, err := s.Encounters.ListByEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, encounters)
}
