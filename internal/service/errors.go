package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-gen/internal/store"
)

// Common service errors. Callers check them with errors.Is; the API layer
// maps them to HTTP status codes.
var (
	// ErrNotFound indicates the resource does not exist or belongs to another
	// user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("resource not found")

	// ErrPersistence indicates a store read or write failed. It is the same
	// value as store.ErrPersistence so either can be matched.
	ErrPersistence = store.ErrPersistence

	// ErrPartialResult indicates flashcards were persisted but a later write
	// of the same result failed. The generation must not be marked failed.
	ErrPartialResult = errors.New("result partially persisted")

	// ErrEmptyUpdate indicates an edit supplied neither front nor back.
	ErrEmptyUpdate = errors.New("at least one of front or back is required")
)

// ServiceError wraps an unexpected failure with the operation that produced it.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "initiate", "update_flashcard")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError classifies a store error for callers. Not-found errors
// become ErrNotFound, keeping the store's entity-specific error in the
// chain; everything else is wrapped with ErrPersistence
// unless it already carries a service sentinel.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNotFound) {
		return err
	}
	if store.IsNotFoundError(err) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if !errors.Is(err, ErrPersistence) {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
