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

// GenerationService is the part of the generation orchestrator the
// handlers use.
type GenerationService interface {
	Initiate(ctx context.Context, userID uuid.UUID, text string) (*service.InitiateResult, error)
	Snapshot(ctx context.Context, userID, generationID uuid.UUID) (*domain.GenerationSnapshot, error)
	Proposals(ctx context.Context, userID, generationID uuid.UUID) ([]*domain.Flashcard, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)
}

// GenerationHandler handles generation-related HTTP requests.
type GenerationHandler struct {
	generations GenerationService
	logger      *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generations GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerationHandler")
	}
	return &GenerationHandler{
		generations: generations,
		logger:      logger.With(slog.String("component", "generation_handler")),
	}
}

// CreateGeneration handles POST /api/generations. It answers 202 as soon as
// the generation is recorded; the work continues in the background.
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateGenerationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.generations.Initiate(r.Context(), userID, req.InputText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start generation")
		return
	}

	log.Debug("generation accepted", slog.String("generation_id", result.GenerationID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, InitiateResponse{
		GenerationID: result.GenerationID.String(),
		Status:       string(result.Status),
	})
}

// GetGeneration handles GET /api/generations/{id}, the endpoint clients poll.
func (h *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, generationID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	snap, err := h.generations.Snapshot(r.Context(), userID, generationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get generation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snap))
}

// ListProposals handles GET /api/generations/{id}/flashcards.
func (h *GenerationHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, generationID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.generations.Proposals(r.Context(), userID, generationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardsToResponse(cards))
}

// ListGenerations handles GET /api/generations.
func (h *GenerationHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
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

	gens, err := h.generations.List(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list generations")
		return
	}

	items := make([]GenerationResponse, 0, len(gens))
	for _, g := range gens {
		items = append(items, generationToResponse(g))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse[GenerationResponse]{Items: items, Limit: limit, Offset: offset})
}
