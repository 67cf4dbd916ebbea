package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/api/shared"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/service"
)

// FlashcardService is the part of the flashcard service the handlers use.
type FlashcardService interface {
	Create(ctx context.Context, userID uuid.UUID, front, back string) (*domain.Flashcard, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)
	Update(ctx context.Context, userID, id uuid.UUID, in service.UpdateInput) (*domain.Flashcard, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// FlashcardHandler handles flashcard-related HTTP requests.
type FlashcardHandler struct {
	flashcards FlashcardService
	logger     *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(flashcards FlashcardService, logger *slog.Logger) *FlashcardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}
	return &FlashcardHandler{
		flashcards: flashcards,
		logger:     logger.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcard handles POST /api/flashcards for manual cards.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.flashcards.Create(r.Context(), userID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, flashcardToResponse(card))
}

// GetFlashcard handles GET /api/flashcards/{id}.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.flashcards.Get(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// ListFlashcards handles GET /api/flashcards.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	limit, offset, err := parsePagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.flashcards.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[FlashcardResponse]{
		Items:  flashcardsToResponse(cards),
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateFlashcard handles PUT /api/flashcards/{id}, the edit-commit. The
// response carries the card's type after the transition.
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.flashcards.Update(r.Context(), userID, cardID, service.UpdateInput{
		Front: req.Front,
		Back:  req.Back,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// DeleteFlashcard handles DELETE /api/flashcards/{id}.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.flashcards.Delete(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
