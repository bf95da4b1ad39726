package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/store"
)

// encounteredPayload is attached to entry.encountered events.
type encounteredPayload struct {
	Slot   int `json:"slot"`
	DayGap int `json:"day_gap"`
	HP     int `json:"hp"`
}

// AddWord implements VocabularyService.AddWord.
func (s *vocabularyService) AddWord(ctx context.Context, in AddWordInput) (*AddResult, error) {
	const op = "add_word"
	log := logger.FromContextOrDefault(ctx, s.logger)

	display, key := domain.NormalizeWord(in.Word)
	language := domain.NormalizeLanguage(in.Language)
	if display == "" || language == "" {
		return nil, &Error{Op: op, Kind: domain.ErrEmptyInput, Word: in.Word, Language: in.Language}
	}

	var result AddResult
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		today, now := s.calendar.Today(), s.calendar.Now()

		e, err := r.entries.GetByKey(ctx, language, key)
		switch {
		case err == nil:
			gap, subsequent := e.Encounter(today)
			enc := &domain.Encounter{
				EntryID:      e.ID,
				Slot:         domain.SlotFor(subsequent),
				Day:          today,
				DayGap:       &gap,
				Sentence:     in.Sentence,
				Translations: in.Translations,
				Source:       in.Source,
				RecordedAt:   now,
			}
			if err := r.entries.Update(ctx, e); err != nil {
				return err
			}
			if err := r.encounters.Put(ctx, enc); err != nil {
				return err
			}

			result = AddResult{Created: false, Entry: e, Slot: enc.Slot}
			emit(s.event(ctx, events.EntryEncountered, e, encounteredPayload{Slot: enc.Slot, DayGap: gap, HP: e.HP}))
			return nil

		case errors.Is(err, store.ErrEntryNotFound):
			if err := checkNotMastered(ctx, r.mastered, op, display, language, key); err != nil {
				return err
			}

			e, err := domain.NewEntry(language, display, today, now)
			if err != nil {
				return &Error{Op: op, Kind: domain.ErrValidation, Word: display, Language: language, Err: err}
			}
			if err := r.entries.Create(ctx, e); err != nil {
				return err
			}
			enc := &domain.Encounter{
				EntryID:      e.ID,
				Slot:         domain.FirstSlot,
				Day:          today,
				Sentence:     in.Sentence,
				Translations: in.Translations,
				Source:       in.Source,
				RecordedAt:   now,
			}
			if err := r.encounters.Put(ctx, enc); err != nil {
				return err
			}

			result = AddResult{Created: true, Entry: e, Slot: domain.FirstSlot}
			emit(s.event(ctx, events.EntryCreated, e, nil))
			return nil

		default:
			return err
		}
	})
	if err != nil {
		log.Debug("add word failed",
			slog.String("word", display),
			slog.String("language", language),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("word recorded",
		slog.String("entry_id", result.Entry.ID.String()),
		slog.String("language", language),
		slog.Bool("created", result.Created),
		slog.Int("slot", result.Slot))
	return &result, nil
}

// AddManual implements VocabularyService.AddManual.
func (s *vocabularyService) AddManual(ctx context.Context, word, language, note string) (*domain.Entry, error) {
	const op = "add_manual"

	display, key := domain.NormalizeWord(word)
	language = domain.NormalizeLanguage(language)
	if display == "" || language == "" {
		return nil, &Error{Op: op, Kind: domain.ErrEmptyInput, Word: word, Language: language}
	}

	var created *domain.Entry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		existing, err := r.entries.GetByKey(ctx, language, key)
		if err == nil {
			return &Error{
				Op: op, Kind: domain.ErrConflict, Word: display, Language: language,
				Related: relatedEntry(existing),
			}
		}
		if !errors.Is(err, store.ErrEntryNotFound) {
			return err
		}
		if err := checkNotMastered(ctx, r.mastered, op, display, language, key); err != nil {
			return err
		}

		e, err := domain.NewEntry(language, display, s.calendar.Today(), s.calendar.Now())
		if err != nil {
			return &Error{Op: op, Kind: domain.ErrValidation, Word: display, Language: language, Err: err}
		}
		e.Note = domain.NormalizeNote(note)
		if err := r.entries.Create(ctx, e); err != nil {
			return err
		}

		created = e
		emit(s.event(ctx, events.EntryCreated, e, map[string]bool{"manual": true}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// checkNotMastered fails with AlreadyMastered when the registry holds the key.
func checkNotMastered(ctx context.Context, mastered store.MasteredStore, op, word, language, key string) error {
	m, err := mastered.GetByKey(ctx, language, key)
	if err == nil {
		return &Error{
			Op: op, Kind: domain.ErrAlreadyMastered, Word: word, Language: language,
			Related: relatedMastered(m),
		}
	}
	if errors.Is(err, store.ErrMasteredNotFound) {
		return nil
	}
	return err
}

// GetEntry implements VocabularyService.GetEntry.
func (s *vocabularyService) GetEntry(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	return loadEntry(ctx, s.repos.Entries, "get_entry", id)
}

// GetEncounters implements VocabularyService.GetEncounters.
func (s *vocabularyService) GetEncounters(ctx context.Context, id uuid.UUID) ([]*domain.Encounter, error) {
	const op = "get_encounters"
	if _, err := loadEntry(ctx, s.repos.Entries, op, id); err != nil {
		return nil, err
	}
	encounters, err := s.repos.Encounters.ListByEntry(ctx, id)
	if err != nil {
		return nil, fail(op, err)
	}
	return encounters, nil
}

// ListActive implements VocabularyService.ListActive.
func (s *vocabularyService) ListActive(ctx context.Context, filter ListFilter) ([]*domain.Entry, error) {
	const op = "list_active"

	sort, err := domain.ParseSortKey(string(filter.Sort))
	if err != nil {
		return nil, &Error{Op: op, Kind: domain.ErrValidation, Err: err}
	}

	entries, err := s.repos.Entries.List(ctx, store.EntryFilter{
		Language: domain.NormalizeLanguage(filter.Language),
		Sort:     sort,
		Limit:    s.limit(filter.Limit),
	})
	if err != nil {
		return nil, fail(op, err)
	}
	return entries, nil
}

// Search implements VocabularyService.Search.
func (s *vocabularyService) Search(ctx context.Context, word, language string) ([]*domain.Entry, error) {
	const op = "search"

	_, key := domain.NormalizeWord(word)
	if key == "" {
		return nil, &Error{Op: op, Kind: domain.ErrEmptyInput, Word: word}
	}

	entries, err := s.repos.Entries.FindByKey(ctx, key, domain.NormalizeLanguage(language))
	if err != nil {
		return nil, fail(op, err)
	}
	return entries, nil
}

// Rename implements VocabularyService.Rename.
func (s *vocabularyService) Rename(ctx context.Context, id uuid.UUID, word string) (*domain.Entry, error) {
	const op = "rename"

	display, key := domain.NormalizeWord(word)
	if display == "" {
		return nil, &Error{Op: op, Kind: domain.ErrEmptyInput, Word: word, EntryID: id}
	}

	var renamed *domain.Entry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, _ func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, id)
		if err != nil {
			return err
		}

		if key != e.Key {
			other, err := r.entries.GetByKey(ctx, e.Language, key)
			if err == nil && other.ID != e.ID {
				return &Error{
					Op: op, Kind: domain.ErrConflict, Word: display, Language: e.Language,
					EntryID: id, Related: relatedEntry(other),
				}
			}
			if err != nil && !errors.Is(err, store.ErrEntryNotFound) {
				return err
			}
			if err := checkNotMastered(ctx, r.mastered, op, display, e.Language, key); err != nil {
				return err
			}
		}

		if err := e.Rename(display); err != nil {
			return &Error{Op: op, Kind: domain.ErrEmptyInput, Word: word, EntryID: id}
		}
		if err := r.entries.Update(ctx, e); err != nil {
			if errors.Is(err, store.ErrEntryExists) {
				return &Error{Op: op, Kind: domain.ErrConflict, Word: display, Language: e.Language, EntryID: id, Err: err}
			}
			return err
		}

		renamed = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// UpdateNote implements VocabularyService.UpdateNote.
func (s *vocabularyService) UpdateNote(ctx context.Context, id uuid.UUID, note string) (*domain.Entry, error) {
	const op = "update_note"

	var updated *domain.Entry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, _ func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, id)
		if err != nil {
			return err
		}
		e.Note = domain.NormalizeNote(note)
		if err := r.entries.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements VocabularyService.Delete.
func (s *vocabularyService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "delete"

	return s.write(ctx, op, func(ctx context.Context, r txRepos, emit func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, id)
		if err != nil {
			return err
		}
		if err := r.entries.Delete(ctx, id); err != nil {
			return err
		}
		emit(s.event(ctx, events.EntryDeleted, e, nil))
		return nil
	})
}
