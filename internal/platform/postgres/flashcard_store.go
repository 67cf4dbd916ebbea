package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/store"
)

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the FlashcardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

const flashcardColumns = `id, user_id, front, back, type, generation_id, created_at, updated_at`

// CreateMany implements store.FlashcardStore.CreateMany.
// When the store is not already bound to a transaction, one is opened so the
// batch is all-or-nothing.
func (s *PostgresFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	for i, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: card %d: %w", store.ErrInvalidEntity, i, err)
		}
	}

	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.withTx(tx).insertAll(ctx, cards)
		})
	}
	return s.insertAll(ctx, cards)
}

func (s *PostgresFlashcardStore) insertAll(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO flashcards (user_id, front, back, type, generation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range cards {
		err := stmt.QueryRowContext(ctx,
			card.UserID, card.Front, card.Back, string(card.Type),
			card.GenerationID, card.CreatedAt, card.UpdatedAt,
		).Scan(&card.ID)
		if err != nil {
			log.Error("failed to insert flashcard",
				slog.String("error", err.Error()),
				slog.String("user_id", card.UserID.String()))
			return MapError(err)
		}
	}

	log.Debug("flashcards created", slog.Int("count", len(cards)))
	return nil
}

// GetByIDForUser implements store.FlashcardStore.GetByIDForUser.
func (s *PostgresFlashcardStore) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1 AND user_id = $2`
	return s.getOne(ctx, query, id, userID)
}

func (s *PostgresFlashcardStore) getOne(ctx context.Context, query string, id, userID uuid.UUID) (*domain.Flashcard, error) {
	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFlashcardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, MapError(err)
	}
	return card, nil
}

// Update implements store.FlashcardStore.Update. The row is locked with
// SELECT ... FOR UPDATE for the duration of the mutation.
func (s *PostgresFlashcardStore) Update(
	ctx context.Context,
	id, userID uuid.UUID,
	fn store.FlashcardMutator,
) (*domain.Flashcard, error) {
	var updated *domain.Flashcard
	run := func(ctx context.Context, txStore *PostgresFlashcardStore) error {
		card, err := txStore.updateLocked(ctx, id, userID, fn)
		updated = card
		return err
	}

	if db, ok := s.db.(*sql.DB); ok {
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, s.withTx(tx))
		})
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	if err := run(ctx, s); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresFlashcardStore) updateLocked(
	ctx context.Context,
	id, userID uuid.UUID,
	fn store.FlashcardMutator,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1 AND user_id = $2 FOR UPDATE`
	card, err := s.getOne(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(card); err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE flashcards
		SET front = $3, back = $4, type = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`, id, userID, card.Front, card.Back, string(card.Type), card.UpdatedAt)
	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, MapError(err)
	}
	if err := CheckRowsAffected(res, store.ErrFlashcardNotFound); err != nil {
		return nil, err
	}

	log.Debug("flashcard updated",
		slog.String("flashcard_id", id.String()),
		slog.String("type", string(card.Type)))
	return card, nil
}

// ListByGeneration implements store.FlashcardStore.ListByGeneration.
func (s *PostgresFlashcardStore) ListByGeneration(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE generation_id = $1
		ORDER BY created_at, id
	`
	return s.list(ctx, query, generationID)
}

// ListByUser implements store.FlashcardStore.ListByUser.
func (s *PostgresFlashcardStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	return s.list(ctx, query, userID, limit, offset)
}

func (s *PostgresFlashcardStore) list(ctx context.Context, query string, args ...any) ([]*domain.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list flashcards",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Flashcard{}
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Delete implements store.FlashcardStore.Delete.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(res, store.ErrFlashcardNotFound)
}

// WithTx implements store.FlashcardStore.WithTx.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return s.withTx(tx)
}

func (s *PostgresFlashcardStore) withTx(tx *sql.Tx) *PostgresFlashcardStore {
	return &PostgresFlashcardStore{db: tx, logger: s.logger}
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	var cardType string
	if err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Front,
		&card.Back,
		&cardType,
		&card.GenerationID,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		return nil, err
	}
	card.Type = domain.FlashcardType(cardType)
	return &card, nil
}
