package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/calendar"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// Defaults applied when Options leaves a field at zero.
const (
	DefaultListLimit           = 100
	DefaultStrugglingThreshold = 5
)

// AddWordInput describes one sighting of a word in context.
type AddWordInput struct {
	Word         string
	Language     string
	Sentence     string
	Translations domain.Translations
	Source       domain.Source
}

// AddResult reports what AddWord did.
type AddResult struct {
	// Created is true when the word was new and false for a repeat encounter.
	Created bool
	Entry   *domain.Entry
	// Slot is the encounter slot that received the sighting.
	Slot int
}

// ListFilter selects active entries.
type ListFilter struct {
	Language string
	Sort     domain.SortKey
	Limit    int
}

// ReviewResult reports the effect of a review. Mastered is set when the
// review promoted the entry; Entry then holds its final active state.
type ReviewResult struct {
	Outcome  domain.ReviewOutcome
	Entry    *domain.Entry
	Mastered *domain.MasteredEntry
}

// VocabularyService defines every vocabulary use case.
type VocabularyService interface {
	AddWord(ctx context.Context, in AddWordInput) (*AddResult, error)
	AddManual(ctx context.Context, word, language, note string) (*domain.Entry, error)

	GetEntry(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	GetEncounters(ctx context.Context, id uuid.UUID) ([]*domain.Encounter, error)
	ListActive(ctx context.Context, filter ListFilter) ([]*domain.Entry, error)
	Search(ctx context.Context, word, language string) ([]*domain.Entry, error)
	ListStruggling(ctx context.Context, language string, limit int) ([]*domain.Entry, error)

	Rename(ctx context.Context, id uuid.UUID, word string) (*domain.Entry, error)
	UpdateNote(ctx context.Context, id uuid.UUID, note string) (*domain.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ReviewKnown(ctx context.Context, id uuid.UUID) (*ReviewResult, error)
	ReviewUnknown(ctx context.Context, id uuid.UUID) (*ReviewResult, error)

	Promote(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error)
	Demote(ctx context.Context, masteredID uuid.UUID) (*domain.Entry, error)
	GetMastered(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error)
	ListMastered(ctx context.Context, language string, limit int) ([]*domain.MasteredEntry, error)

	SetParent(ctx context.Context, childID uuid.UUID, parentID *uuid.UUID) (*domain.Entry, error)
	Children(ctx context.Context, parentID uuid.UUID) ([]*domain.Entry, error)

	Stats(ctx context.Context) (*domain.Summary, error)
}

// Repositories groups the stores the service works on.
type Repositories struct {
	Entries    store.EntryStore
	Encounters store.EncounterStore
	Mastered   store.MasteredStore
}

// Options tunes listing behaviour.
type Options struct {
	DefaultListLimit    int
	StrugglingThreshold int
}

type vocabularyService struct {
	db       store.TxBeginner
	repos    Repositories
	calendar *calendar.Calendar
	events   events.EventEmitter
	opts     Options
	logger   *slog.Logger

	// mu serializes writers.
	mu sync.Mutex
}

var _ VocabularyService = (*vocabularyService)(nil)

// NewVocabularyService creates a VocabularyService.
// It returns an error if any of the required dependencies are nil.
func NewVocabularyService(
	db store.TxBeginner,
	repos Repositories,
	cal *calendar.Calendar,
	emitter events.EventEmitter,
	opts Options,
	logger *slog.Logger,
) (VocabularyService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if repos.Entries == nil || repos.Encounters == nil || repos.Mastered == nil {
		return nil, domain.NewValidationError("repos", "cannot contain nil stores", domain.ErrValidation)
	}
	if cal == nil {
		return nil, domain.NewValidationError("calendar", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.Discard
	}
	if opts.DefaultListLimit <= 0 {
		opts.DefaultListLimit = DefaultListLimit
	}
	if opts.StrugglingThreshold <= 0 {
		opts.StrugglingThreshold = DefaultStrugglingThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &vocabularyService{
		db:       db,
		repos:    repos,
		calendar: cal,
		events:   emitter,
		opts:     opts,
		logger:   logger.With(slog.String("component", "vocabulary_service")),
	}, nil
}

// txRepos is the set of stores bound to one transaction.
type txRepos struct {
	entries    store.EntryStore
	encounters store.EncounterStore
	mastered   store.MasteredStore
}

// write runs fn in a transaction while holding the writer lock. The events fn
// collected are emitted after commit, outside the lock.
func (s *vocabularyService) write(
	ctx context.Context,
	op string,
	fn func(ctx context.Context, r txRepos, emit func(*events.Event)) error,
) error {
	var pending []*events.Event
	emit := func(e *events.Event) {
		if e != nil {
			pending = append(pending, e)
		}
	}

	err := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, txRepos{
				entries:    s.repos.Entries.WithTx(tx),
				encounters: s.repos.Encounters.WithTx(tx),
				mastered:   s.repos.Mastered.WithTx(tx),
			}, emit)
		})
	}()
	if err != nil {
		return fail(op, err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	for _, e := range pending {
		if err := s.events.EmitEvent(ctx, e); err != nil {
			log.Warn("lifecycle event handler failed",
				slog.String("event_type", string(e.Type)),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// event builds a lifecycle event; marshal failures are logged and dropped.
func (s *vocabularyService) event(
	ctx context.Context,
	t events.Type,
	e *domain.Entry,
	payload interface{},
) *events.Event {
	ev, err := events.NewEvent(t, e.ID, e.Language, e.Word, payload, s.calendar.Now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to build lifecycle event",
			slog.String("event_type", string(t)),
			slog.String("error", err.Error()))
		return nil
	}
	return ev
}

// loadEntry fetches an active entry, reporting a missing one as NotFound.
func loadEntry(ctx context.Context, entries store.EntryStore, op string, id uuid.UUID) (*domain.Entry, error) {
	e, err := entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrEntryNotFound) {
			return nil, &Error{Op: op, Kind: domain.ErrNotFound, EntryID: id, Err: err}
		}
		return nil, fail(op, err)
	}
	return e, nil
}

func (s *vocabularyService) limit(n int) int {
	if n <= 0 {
		return s.opts.DefaultListLimit
	}
	return n
}
