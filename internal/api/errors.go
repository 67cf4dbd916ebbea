package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-gen/internal/api/shared"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/service"
	"github.com/phrazzld/scry-gen/internal/service/auth"
	"github.com/phrazzld/scry-gen/internal/store"
)

// errUnauthorized is used when a protected handler runs without a user.
var errUnauthorized = errors.New("user not authenticated")

// errInvalidID is returned for malformed path IDs.
var errInvalidID = errors.New("invalid id")

// errInvalidPagination is returned for unparseable limit/offset values.
var errInvalidPagination = errors.New("invalid pagination")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, errUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, generation.ErrInputLength),
		errors.Is(err, service.ErrEmptyUpdate),
		errors.Is(err, errInvalidID),
		errors.Is(err, errInvalidPagination),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, store.ErrInvalidEntity),
		isFlashcardValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, errUnauthorized):
		return "User ID not found or invalid"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, store.ErrGenerationNotFound):
		return "Generation not found"
	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"
	case errors.Is(err, service.ErrNotFound), store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, generation.ErrInputLength):
		return generation.CategoryInputLength.UserMessage()
	case errors.Is(err, service.ErrEmptyUpdate):
		return "At least one of front or back is required"
	case errors.Is(err, errInvalidID):
		return "Invalid ID format"
	case errors.Is(err, errInvalidPagination):
		return "Invalid pagination parameters"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, domain.ErrEmptyFront):
		return "Front cannot be empty"
	case errors.Is(err, domain.ErrEmptyBack):
		return "Back cannot be empty"
	case errors.Is(err, domain.ErrFrontTooLong):
		return fmt.Sprintf("Front must be at most %d characters", domain.MaxFrontChars)
	case errors.Is(err, domain.ErrBackTooLong):
		return fmt.Sprintf("Back must be at most %d characters", domain.MaxBackChars)
	case errors.Is(err, store.ErrInvalidEntity), isFlashcardValidationError(err):
		return "Invalid flashcard data"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, service.ErrPersistence):
		return generation.CategoryPersistence.UserMessage()

	default:
		return "An unexpected error occurred"
	}
}

// ErrorCategory returns the failure class reported alongside synchronous
// errors, or "" when the error has none worth reporting.
func ErrorCategory(err error) string {
	switch {
	case errors.Is(err, generation.ErrInputLength):
		return string(generation.CategoryInputLength)
	case errors.Is(err, service.ErrPersistence):
		return string(generation.CategoryPersistence)
	default:
		return ""
	}
}

// HandleAPIError writes the mapped status and safe message for err. A
// non-empty fallback replaces the generic 500 message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" && ErrorCategory(err) == "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if category := ErrorCategory(err); category != "" {
		opts = append(opts, shared.WithCategory(category))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns a validator error into a short message that
// names the field without echoing the value.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'UpdateFlashcardRequest.Front' Error:Field validation for 'Front' failed on the 'max' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 && fieldParts[3] != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
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
	default:
		return "validation failed"
	}
}

func isFlashcardValidationError(err error) bool {
	return errors.Is(err, domain.ErrEmptyFront) ||
		errors.Is(err, domain.ErrEmptyBack) ||
		errors.Is(err, domain.ErrFrontTooLong) ||
		errors.Is(err, domain.ErrBackTooLong) ||
		errors.Is(err, domain.ErrInvalidFlashcardType) ||
		errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrValidation)
}
