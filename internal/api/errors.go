package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
)

// MapErrorToStatusCode maps service and domain errors to HTTP status codes.
// Anything unrecognized is a 500 so internal failures never look like client
// mistakes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadyMastered):
		return http.StatusConflict

	case errors.Is(err, domain.ErrSelfReference),
		errors.Is(err, domain.ErrLanguageMismatch),
		errors.Is(err, domain.ErrDepthExceeded):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var svcErr *service.Error
	isSvc := errors.As(err, &svcErr)

	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return "Word and language must not be empty"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"
	case errors.Is(err, domain.ErrNotFound):
		if isSvc && svcErr.Detail == service.DetailParentMastered {
			return "Parent word is mastered"
		}
		return "Word not found"
	case errors.Is(err, domain.ErrConflict):
		return "Word already exists"
	case errors.Is(err, domain.ErrAlreadyMastered):
		return "Word is already mastered"
	case errors.Is(err, domain.ErrSelfReference):
		return "A word cannot be its own parent"
	case errors.Is(err, domain.ErrLanguageMismatch):
		return "Parent and child must share a language"
	case errors.Is(err, domain.ErrDepthExceeded):
		return "Parent links are limited to one level"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err: status from
// MapErrorToStatusCode, the machine-readable kind and, for service errors, the
// related record. An empty message selects GetSafeErrorMessage.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	opts := []shared.ResponseOption{shared.WithKind(errorKind(err))}
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Related != nil {
		opts = append(opts, shared.WithRelated(svcErr.Related))
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// errorKind reports malformed IDs, which never reach the service, as
// validation failures.
func errorKind(err error) string {
	if errors.Is(err, domain.ErrInvalidID) {
		return "validation"
	}
	return service.KindCode(err)
}

// SanitizeValidationError turns validator output into a short message that
// names the field without echoing the input.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) && vErr.Field != "" {
		return fmt.Sprintf("Invalid %s", vErr.Field)
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID"
	default:
		return "validation failed"
	}
}
