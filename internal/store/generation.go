package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
)

// GenerationStore defines the interface for generation record persistence.
// Every write targets a single row by primary key.
type GenerationStore interface {
	// Create inserts a generation and sets gen.ID to the store-assigned ID.
	Create(ctx context.Context, gen *domain.Generation) error

	// GetByIDForUser retrieves a generation owned by userID.
	// Returns ErrGenerationNotFound if it does not exist or belongs to someone else.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Generation, error)

	// ListByUser returns a user's generations, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)

	// MarkCompleted records the provider's result on the generation.
	// Returns ErrGenerationNotFound if no row was updated.
	MarkCompleted(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error

	// MarkResponded sets response_time only if it is still unset. It is a
	// no-op for a generation that already has one.
	MarkResponded(ctx context.Context, id uuid.UUID, at time.Time) error

	// WithTx returns a GenerationStore that runs its queries on tx.
	WithTx(tx *sql.Tx) GenerationStore
}

// GenerationLogStore defines the interface for generation log persistence.
type GenerationLogStore interface {
	// Create inserts the log for a generation.
	// Returns ErrDuplicate if the generation already has a log.
	Create(ctx context.Context, log *domain.GenerationLog) error

	// GetByGenerationID retrieves the log of a generation.
	// Returns ErrGenerationLogNotFound if there is none.
	GetByGenerationID(ctx context.Context, generationID uuid.UUID) (*domain.GenerationLog, error)

	// MarkCompleted records the response time and token count of a successful
	// call. It only applies while error_info is unset; otherwise it returns
	// ErrGenerationLogNotFound.
	MarkCompleted(ctx context.Context, generationID uuid.UUID, at time.Time, tokenCount *int) error

	// RecordError sets error_info, error_code and response_time if no error
	// has been recorded yet. It reports whether the row was updated.
	RecordError(ctx context.Context, generationID uuid.UUID, errorInfo, errorCode string, at time.Time) (bool, error)

	// WithTx returns a GenerationLogStore that runs its queries on tx.
	WithTx(tx *sql.Tx) GenerationLogStore
}
