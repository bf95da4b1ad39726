package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

type promotedPayload struct {
	MasteredID        uuid.UUID `json:"mastered_id"`
	TotalEncounters   int       `json:"total_encounters"`
	BreakthroughCount int       `json:"breakthrough_count"`
}

type demotedPayload struct {
	MasteredID   uuid.UUID `json:"mastered_id"`
	Breakthrough int       `json:"breakthrough"`
}

// ReviewKnown implements VocabularyService.ReviewKnown.
func (s *vocabularyService) ReviewKnown(ctx context.Context, id uuid.UUID) (*ReviewResult, error) {
	return s.review(ctx, "review_known", id, (*domain.Entry).ReviewKnown)
}

// ReviewUnknown implements VocabularyService.ReviewUnknown.
func (s *vocabularyService) ReviewUnknown(ctx context.Context, id uuid.UUID) (*ReviewResult, error) {
	return s.review(ctx, "review_unknown", id, (*domain.Entry).ReviewUnknown)
}

func (s *vocabularyService) review(
	ctx context.Context,
	op string,
	id uuid.UUID,
	apply func(*domain.Entry, time.Time) domain.ReviewOutcome,
) (*ReviewResult, error) {
	var result ReviewResult
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, id)
		if err != nil {
			return err
		}

		outcome := apply(e, s.calendar.Now())
		result = ReviewResult{Outcome: outcome, Entry: e}

		if outcome == domain.OutcomePromoted {
			m, err := s.promote(ctx, r, e)
			if err != nil {
				return err
			}
			result.Mastered = m
			emit(s.promotedEvent(ctx, e, m))
			return nil
		}

		return r.entries.Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("review applied",
		slog.String("entry_id", id.String()),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("hp", result.Entry.HP))
	return &result, nil
}

// Promote implements VocabularyService.Promote.
func (s *vocabularyService) Promote(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error) {
	const op = "promote"

	var mastered *domain.MasteredEntry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, id)
		if err != nil {
			return err
		}
		m, err := s.promote(ctx, r, e)
		if err != nil {
			return err
		}
		mastered = m
		emit(s.promotedEvent(ctx, e, m))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mastered, nil
}

// promote moves e into the mastered registry inside the caller's transaction.
// The registry keeps the slot-0 encounter and the encounter in the highest
// occupied slot, which after a wraparound may not be the latest sighting.
func (s *vocabularyService) promote(ctx context.Context, r txRepos, e *domain.Entry) (*domain.MasteredEntry, error) {
	stored, err := r.encounters.ListByEntry(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	encounterLog, err := domain.NewEncounterLog(stored)
	if err != nil {
		return nil, &Error{Op: "promote", Kind: domain.ErrStoreFailure, EntryID: e.ID, Err: err}
	}

	m := domain.Master(e, encounterLog.First(), encounterLog.HighestSlot(), s.calendar.Now())
	if err := r.mastered.Upsert(ctx, m); err != nil {
		return nil, err
	}
	if err := r.entries.Delete(ctx, e.ID); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("entry promoted",
		slog.String("entry_id", e.ID.String()),
		slog.String("mastered_id", m.ID.String()),
		slog.String("language", e.Language),
		slog.Int("breakthrough", m.BreakthroughCount))
	return m, nil
}

func (s *vocabularyService) promotedEvent(ctx context.Context, e *domain.Entry, m *domain.MasteredEntry) *events.Event {
	return s.event(ctx, events.EntryPromoted, e, promotedPayload{
		MasteredID:        m.ID,
		TotalEncounters:   m.TotalEncounters,
		BreakthroughCount: m.BreakthroughCount,
	})
}

// Demote implements VocabularyService.Demote.
func (s *vocabularyService) Demote(ctx context.Context, masteredID uuid.UUID) (*domain.Entry, error) {
	const op = "demote"

	var revived *domain.Entry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		m, err := r.mastered.GetByID(ctx, masteredID)
		if err != nil {
			if errors.Is(err, store.ErrMasteredNotFound) {
				return &Error{Op: op, Kind: domain.ErrNotFound, EntryID: masteredID, Err: err}
			}
			return err
		}

		active, err := r.entries.GetByKey(ctx, m.Language, m.Key)
		if err == nil {
			return &Error{
				Op: op, Kind: domain.ErrConflict, Word: m.Word, Language: m.Language,
				EntryID: masteredID, Related: relatedEntry(active),
			}
		}
		if !errors.Is(err, store.ErrEntryNotFound) {
			return err
		}

		e, first := m.Revive(s.calendar.Today(), s.calendar.Now())
		if err := r.entries.Create(ctx, e); err != nil {
			return err
		}
		if first != nil {
			if err := r.encounters.Put(ctx, first); err != nil {
				return err
			}
		}
		if err := r.mastered.SetBreakthrough(ctx, m.ID, e.Breakthrough); err != nil {
			return err
		}

		revived = e
		emit(s.event(ctx, events.EntryDemoted, e, demotedPayload{MasteredID: m.ID, Breakthrough: e.Breakthrough}))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("entry demoted",
		slog.String("mastered_id", masteredID.String()),
		slog.String("entry_id", revived.ID.String()),
		slog.Int("breakthrough", revived.Breakthrough))
	return revived, nil
}

// GetMastered implements VocabularyService.GetMastered.
func (s *vocabularyService) GetMastered(ctx context.Context, id uuid.UUID) (*domain.MasteredEntry, error) {
	const op = "get_mastered"

	m, err := s.repos.Mastered.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMasteredNotFound) {
			return nil, &Error{Op: op, Kind: domain.ErrNotFound, EntryID: id, Err: err}
		}
		return nil, fail(op, err)
	}
	return m, nil
}

// ListMastered implements VocabularyService.ListMastered.
func (s *vocabularyService) ListMastered(ctx context.Context, language string, limit int) ([]*domain.MasteredEntry, error) {
	entries, err := s.repos.Mastered.ListVisible(ctx, domain.NormalizeLanguage(language), s.limit(limit))
	if err != nil {
		return nil, fail("list_mastered", err)
	}
	return entries, nil
}
