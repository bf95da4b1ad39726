package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/store"
)

// Error details that refine a kind.
const (
	// DetailParentMastered marks a NotFound parent whose id belongs to the
	// mastered registry rather than to an active entry.
	DetailParentMastered = "parent_mastered"
)

// Related identifies the record an error is about, such as the entry a rename
// collided with or the mastered row that blocked an add.
type Related struct {
	ID       uuid.UUID `json:"id"`
	Word     string    `json:"word"`
	Language string    `json:"language"`
	Mastered bool      `json:"mastered,omitempty"`
}

// Error is returned by every VocabularyService operation.
type Error struct {
	Op       string
	Kind     error
	Detail   string
	Word     string
	Language string
	EntryID  uuid.UUID
	Related  *Related
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Op, e.Kind)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	if e.Word != "" {
		fmt.Fprintf(&b, ": word %q", e.Word)
		if e.Language != "" {
			fmt.Fprintf(&b, " [%s]", e.Language)
		}
	}
	if e.EntryID != uuid.Nil {
		fmt.Fprintf(&b, ": entry %s", e.EntryID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause, so errors.Is matches
// domain kinds as well as store sentinels.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

var kindCodes = []struct {
	kind error
	code string
}{
	{domain.ErrEmptyInput, "empty_input"},
	{domain.ErrNotFound, "not_found"},
	{domain.ErrConflict, "conflict"},
	{domain.ErrAlreadyMastered, "already_mastered"},
	{domain.ErrSelfReference, "self_reference"},
	{domain.ErrLanguageMismatch, "language_mismatch"},
	{domain.ErrDepthExceeded, "depth_exceeded"},
	{domain.ErrValidation, "validation"},
	{domain.ErrStoreFailure, "store_failure"},
}

// KindCode returns the machine-readable code of err's kind. Errors without a
// recognized kind are reported as store_failure. A nil error has no code.
func KindCode(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Kind != nil {
		for _, kc := range kindCodes {
			if errors.Is(svcErr.Kind, kc.kind) {
				return kc.code
			}
		}
	}
	for _, kc := range kindCodes {
		if errors.Is(err, kc.kind) {
			return kc.code
		}
	}
	return "store_failure"
}

// fail returns err unchanged when it already is a service error and wraps it
// as a store failure otherwise. A NotFound store error becomes a NotFound kind.
func fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if store.IsNotFoundError(err) {
		return &Error{Op: op, Kind: domain.ErrNotFound, Err: err}
	}
	if store.IsDuplicateError(err) {
		return &Error{Op: op, Kind: domain.ErrConflict, Err: err}
	}
	return &Error{Op: op, Kind: domain.ErrStoreFailure, Err: err}
}

func relatedEntry(e *domain.Entry) *Related {
	return &Related{ID: e.ID, Word: e.Word, Language: e.Language}
}

func relatedMastered(m *domain.MasteredEntry) *Related {
	return &Related{ID: m.ID, Word: m.Word, Language: m.Language, Mastered: true}
}
