package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/store"
)

// SetParent implements VocabularyService.SetParent. A nil parentID clears the
// link. Chains are limited to one level: a parent cannot itself have a parent
// and an entry with children cannot become a child.
func (s *vocabularyService) SetParent(ctx context.Context, childID uuid.UUID, parentID *uuid.UUID) (*domain.Entry, error) {
	const op = "set_parent"

	var child *domain.Entry
	err := s.write(ctx, op, func(ctx context.Context, r txRepos, _ func(*events.Event)) error {
		e, err := loadEntry(ctx, r.entries, op, childID)
		if err != nil {
			return err
		}

		if parentID == nil {
			e.ParentID = nil
			if err := r.entries.Update(ctx, e); err != nil {
				return err
			}
			child = e
			return nil
		}

		parent, err := r.entries.GetByID(ctx, *parentID)
		if err != nil {
			if !errors.Is(err, store.ErrEntryNotFound) {
				return err
			}
			notFound := &Error{Op: op, Kind: domain.ErrNotFound, EntryID: *parentID, Err: err}
			m, mErr := r.mastered.GetByID(ctx, *parentID)
			switch {
			case mErr == nil:
				notFound.Detail = DetailParentMastered
				notFound.Related = relatedMastered(m)
			case !errors.Is(mErr, store.ErrMasteredNotFound):
				return mErr
			}
			return notFound
		}

		if parent.ID == e.ID {
			return &Error{Op: op, Kind: domain.ErrSelfReference, Word: e.Word, Language: e.Language, EntryID: e.ID}
		}
		if parent.Language != e.Language {
			return &Error{
				Op: op, Kind: domain.ErrLanguageMismatch, Word: e.Word, Language: e.Language,
				EntryID: e.ID, Related: relatedEntry(parent),
			}
		}
		if parent.ParentID != nil {
			return &Error{
				Op: op, Kind: domain.ErrDepthExceeded, Word: e.Word, Language: e.Language,
				EntryID: e.ID, Related: relatedEntry(parent),
			}
		}
		n, err := r.entries.CountChildren(ctx, e.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return &Error{Op: op, Kind: domain.ErrDepthExceeded, Word: e.Word, Language: e.Language, EntryID: e.ID}
		}

		e.ParentID = &parent.ID
		if err := r.entries.Update(ctx, e); err != nil {
			return err
		}
		child = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// Children implements VocabularyService.Children.
func (s *vocabularyService) Children(ctx context.Context, parentID uuid.UUID) ([]*domain.Entry, error) {
	const op = "children"

	if _, err := loadEntry(ctx, s.repos.Entries, op, parentID); err != nil {
		return nil, err
	}
	children, err := s.repos.Entries.ListChildren(ctx, parentID)
	if err != nil {
		return nil, fail(op, err)
	}
	return children, nil
}
