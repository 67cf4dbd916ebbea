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

// PostgresGenerationLogStore implements the store.GenerationLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGenerationLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationLogStore creates a new PostgreSQL implementation of the
// GenerationLogStore interface. If logger is nil, a default logger will be used.
func NewPostgresGenerationLogStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGenerationLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_log_store")),
	}
}

// Ensure PostgresGenerationLogStore implements store.GenerationLogStore interface
var _ store.GenerationLogStore = (*PostgresGenerationLogStore)(nil)

// Create implements store.GenerationLogStore.Create.
func (s *PostgresGenerationLogStore) Create(ctx context.Context, genLog *domain.GenerationLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO generation_logs (generation_id, request_time, input_length, input_hash)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		genLog.GenerationID, genLog.RequestTime, genLog.InputLength, genLog.InputHash)
	if err != nil {
		log.Error("failed to create generation log",
			slog.String("error", err.Error()),
			slog.String("generation_id", genLog.GenerationID.String()))
		return MapError(err)
	}

	return nil
}

// GetByGenerationID implements store.GenerationLogStore.GetByGenerationID.
func (s *PostgresGenerationLogStore) GetByGenerationID(
	ctx context.Context,
	generationID uuid.UUID,
) (*domain.GenerationLog, error) {
	query := `
		SELECT generation_id, request_time, response_time, token_count,
		       error_info, error_code, input_length, input_hash
		FROM generation_logs
		WHERE generation_id = $1
	`

	var l domain.GenerationLog
	err := s.db.QueryRowContext(ctx, query, generationID).Scan(
		&l.GenerationID,
		&l.RequestTime,
		&l.ResponseTime,
		&l.TokenCount,
		&l.ErrorInfo,
		&l.ErrorCode,
		&l.InputLength,
		&l.InputHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGenerationLogNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get generation log",
			slog.String("error", err.Error()),
			slog.String("generation_id", generationID.String()))
		return nil, MapError(err)
	}

	return &l, nil
}

// MarkCompleted implements store.GenerationLogStore.MarkCompleted.
func (s *PostgresGenerationLogStore) MarkCompleted(
	ctx context.Context,
	generationID uuid.UUID,
	at time.Time,
	tokenCount *int,
) error {
	query := `
		UPDATE generation_logs
		SET response_time = $2, token_count = $3
		WHERE generation_id = $1 AND error_info IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, generationID, at, tokenCount)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark generation log completed",
			slog.String("error", err.Error()),
			slog.String("generation_id", generationID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(res, store.ErrGenerationLogNotFound)
}

// RecordError implements store.GenerationLogStore.RecordError.
func (s *PostgresGenerationLogStore) RecordError(
	ctx context.Context,
	generationID uuid.UUID,
	errorInfo, errorCode string,
	at time.Time,
) (bool, error) {
	query := `
		UPDATE generation_logs
		SET error_info = $2, error_code = $3, response_time = $4
		WHERE generation_id = $1 AND error_info IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, generationID, errorInfo, errorCode, at)
	if err != nil {
		return false, MapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// WithTx implements store.GenerationLogStore.WithTx.
func (s *PostgresGenerationLogStore) WithTx(tx *sql.Tx) store.GenerationLogStore {
	return &PostgresGenerationLogStore{db: tx, logger: s.logger}
}
