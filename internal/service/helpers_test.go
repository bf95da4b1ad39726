package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/calendar"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/phrazzld/lexis/internal/testdb"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testEpoch is day 0 of every test calendar.
var testEpoch = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc      service.VocabularyService
	clock    *calendar.ManualClock
	db       *testdb.DB
	stores   *sqlstore.Stores
	recorder *eventRecorder
}

type fixtureOption func(*service.Repositories)

// newFixture builds a service over a fresh in-memory database with the clock
// at noon on day 0.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	db := testdb.NewSQLite(t)
	stores := sqlstore.NewStores(db.DB, db.Dialect, nil)
	clock := calendar.NewManualClock(testEpoch.Add(12 * time.Hour))

	repos := service.Repositories{
		Entries:    stores.Entries,
		Encounters: stores.Encounters,
		Mastered:   stores.Mastered,
	}
	for _, opt := range opts {
		opt(&repos)
	}

	recorder := &eventRecorder{}
	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(recorder)

	svc, err := service.NewVocabularyService(
		db.DB, repos, newCalendar(clock), emitter, service.Options{}, nil,
	)
	require.NoError(t, err)

	return &fixture{svc: svc, clock: clock, db: db, stores: stores, recorder: recorder}
}

// add records a plain sighting and fails the test on error.
func (f *fixture) add(t *testing.T, word, language string) *service.AddResult {
	t.Helper()
	res, err := f.svc.AddWord(context.Background(), service.AddWordInput{
		Word:     word,
		Language: language,
		Sentence: "a sentence containing " + word,
	})
	require.NoError(t, err)
	return res
}

// master reviews an entry as known until it is promoted.
func (f *fixture) master(t *testing.T, id uuid.UUID) *domain.MasteredEntry {
	t.Helper()
	for i := 0; i < 1000; i++ {
		res, err := f.svc.ReviewKnown(context.Background(), id)
		require.NoError(t, err)
		if res.Outcome == domain.OutcomePromoted {
			require.NotNil(t, res.Mastered)
			return res.Mastered
		}
	}
	t.Fatalf("entry %s was never promoted", id)
	return nil
}

// requireKind asserts err is a service error of the given kind.
func requireKind(t *testing.T, err error, kind error) *service.Error {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr), "expected *service.Error, got %T", err)
	return svcErr
}

// eventRecorder keeps every event it is handed.
type eventRecorder struct {
	events []*events.Event
}

func (r *eventRecorder) HandleEvent(_ context.Context, e *events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.Type {
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// failingMasteredStore wraps a real MasteredStore and fails Upsert on demand.
type failingMasteredStore struct {
	store.MasteredStore
	FailOnUpsert bool
}

func (m *failingMasteredStore) Upsert(ctx context.Context, entry *domain.MasteredEntry) error {
	if m.FailOnUpsert {
		return errors.New("simulated upsert failure")
	}
	return m.MasteredStore.Upsert(ctx, entry)
}

func (m *failingMasteredStore) WithTx(tx *sql.Tx) store.MasteredStore {
	return &failingMasteredStore{
		MasteredStore: m.MasteredStore.WithTx(tx),
		FailOnUpsert:  m.FailOnUpsert,
	}
}

func withFailingMastered(m *failingMasteredStore) fixtureOption {
	return func(r *service.Repositories) {
		m.MasteredStore = r.Mastered
		r.Mastered = m
	}
}

// MockEventHandler records calls through testify/mock.
type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newCalendar(clock calendar.Clock) *calendar.Calendar {
	return calendar.New(testEpoch, clock)
}

// eventOfType matches an event argument by its type.
func eventOfType(t events.Type) interface{} {
	return mock.MatchedBy(func(e *events.Event) bool { return e.Type == t })
}
