package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/store"
)

// PostgresGenerationStore implements the store.GenerationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationStore creates a new PostgreSQL implementation of the GenerationStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresGenerationStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

// Ensure PostgresGenerationStore implements store.GenerationStore interface
var _ store.GenerationStore = (*PostgresGenerationStore)(nil)

const generationColumns = `id, user_id, request_time, response_time, token_count, model, generated_count`

// Create implements store.GenerationStore.Create.
func (s *PostgresGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if gen.UserID == uuid.Nil {
		return domain.ErrEmptyUserID
	}

	query := `
		INSERT INTO generations (user_id, request_time)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := s.db.QueryRowContext(ctx, query, gen.UserID, gen.RequestTime).Scan(&gen.ID); err != nil {
		log.Error("failed to create generation",
			slog.String("error", err.Error()),
			slog.String("user_id", gen.UserID.String()))
		return MapError(err)
	}

	log.Debug("generation created",
		slog.String("generation_id", gen.ID.String()),
		slog.String("user_id", gen.UserID.String()))
	return nil
}

// GetByIDForUser implements store.GenerationStore.GetByIDForUser.
func (s *PostgresGenerationStore) GetByIDForUser(
	ctx context.Context,
	id, userID uuid.UUID,
) (*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + generationColumns + ` FROM generations WHERE id = $1 AND user_id = $2`

	gen, err := scanGeneration(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generation not found", slog.String("generation_id", id.String()))
			return nil, store.ErrGenerationNotFound
		}
		log.Error("failed to get generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return nil, MapError(err)
	}

	return gen, nil
}

// ListByUser implements store.GenerationStore.ListByUser.
func (s *PostgresGenerationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit, offset = normalizePage(limit, offset)

	query := `
		SELECT ` + generationColumns + `
		FROM generations
		WHERE user_id = $1
		ORDER BY request_time DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list generations",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	gens := []*domain.Generation{}
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, MapError(err)
		}
		gens = append(gens, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return gens, nil
}

// MarkCompleted implements store.GenerationStore.MarkCompleted.
func (s *PostgresGenerationStore) MarkCompleted(
	ctx context.Context,
	id uuid.UUID,
	result domain.GenerationResult,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generations
		SET response_time = $2, token_count = $3, model = $4, generated_count = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		id, result.ResponseTime, result.TokenCount, result.Model, result.GeneratedCount)
	if err != nil {
		log.Error("failed to mark generation completed",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(res, store.ErrGenerationNotFound)
}

// MarkResponded implements store.GenerationStore.MarkResponded.
func (s *PostgresGenerationStore) MarkResponded(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE generations SET response_time = $2 WHERE id = $1 AND response_time IS NULL`
	if _, err := s.db.ExecContext(ctx, query, id, at); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark generation responded",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return MapError(err)
	}
	return nil
}

// WithTx implements store.GenerationStore.WithTx.
func (s *PostgresGenerationStore) WithTx(tx *sql.Tx) store.GenerationStore {
	return &PostgresGenerationStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*domain.Generation, error) {
	var gen domain.Generation
	if err := row.Scan(
		&gen.ID,
		&gen.UserID,
		&gen.RequestTime,
		&gen.ResponseTime,
		&gen.TokenCount,
		&gen.Model,
		&gen.GeneratedCount,
	); err != nil {
		return nil, err
	}
	return &gen, nil
}
