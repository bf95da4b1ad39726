package service

import (
	"context"

	"github.com/phrazzld/lexis/internal/domain"
)

// Stats implements VocabularyService.Stats. Mastered rows shadowed by an
// active entry are not counted.
func (s *vocabularyService) Stats(ctx context.Context) (*domain.Summary, error) {
	const op = "stats"

	tally, err := s.repos.Entries.Tally(ctx)
	if err != nil {
		return nil, fail(op, err)
	}
	mastered, err := s.repos.Mastered.CountVisible(ctx)
	if err != nil {
		return nil, fail(op, err)
	}

	return &domain.Summary{
		CurrentDay:      s.calendar.Today(),
		WordsByLanguage: tally.WordsByLanguage,
		TotalWords:      tally.TotalWords,
		TotalEncounters: tally.TotalEncounters,
		MasteredCount:   mastered,
	}, nil
}

// ListStruggling implements VocabularyService.ListStruggling: active entries
// whose HP is above the configured threshold, highest HP first.
func (s *vocabularyService) ListStruggling(ctx context.Context, language string, limit int) ([]*domain.Entry, error) {
	entries, err := s.repos.Entries.ListAboveHP(ctx,
		domain.NormalizeLanguage(language), s.opts.StrugglingThreshold, s.limit(limit))
	if err != nil {
		return nil, fail("list_struggling", err)
	}
	return entries, nil
}
