package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/api/shared"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/service"
	"github.com/stretchr/testify/require"
)

type stubGenerationService struct {
	InitiateFn  func(ctx context.Context, userID uuid.UUID, text string) (*service.InitiateResult, error)
	SnapshotFn  func(ctx context.Context, userID, generationID uuid.UUID) (*domain.GenerationSnapshot, error)
	ProposalsFn func(ctx context.Context, userID, generationID uuid.UUID) ([]*domain.Flashcard, error)
	ListFn      func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error)
}

func (s *stubGenerationService) Initiate(ctx context.Context, userID uuid.UUID, text string) (*service.InitiateResult, error) {
	return s.InitiateFn(ctx, userID, text)
}

func (s *stubGenerationService) Snapshot(ctx context.Context, userID, generationID uuid.UUID) (*domain.GenerationSnapshot, error) {
	return s.SnapshotFn(ctx, userID, generationID)
}

func (s *stubGenerationService) Proposals(ctx context.Context, userID, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	return s.ProposalsFn(ctx, userID, generationID)
}

func (s *stubGenerationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	return s.ListFn(ctx, userID, limit, offset)
}

type stubFlashcardService struct {
	CreateFn     func(ctx context.Context, userID uuid.UUID, front, back string) (*domain.Flashcard, error)
	GetFn        func(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)
	UpdateFn     func(ctx context.Context, userID, id uuid.UUID, in service.UpdateInput) (*domain.Flashcard, error)
	DeleteFn     func(ctx context.Context, userID, id uuid.UUID) error
}

func (s *stubFlashcardService) Create(ctx context.Context, userID uuid.UUID, front, back string) (*domain.Flashcard, error) {
	return s.CreateFn(ctx, userID, front, back)
}

func (s *stubFlashcardService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	return s.GetFn(ctx, userID, id)
}

func (s *stubFlashcardService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
	return s.ListByUserFn(ctx, userID, limit, offset)
}

func (s *stubFlashcardService) Update(ctx context.Context, userID, id uuid.UUID, in service.UpdateInput) (*domain.Flashcard, error) {
	return s.UpdateFn(ctx, userID, id, in)
}

func (s *stubFlashcardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.DeleteFn(ctx, userID, id)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts the handlers the way the server does. A nil user
// leaves requests unauthenticated.
func newTestRouter(gs GenerationService, fs FlashcardService, user uuid.UUID) http.Handler {
	gh := NewGenerationHandler(gs, testLogger())
	fh := NewFlashcardHandler(fs, testLogger())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			if user != uuid.Nil {
				ctx = shared.WithUserID(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/generations", gh.CreateGeneration)
		r.Get("/generations", gh.ListGenerations)
		r.Get("/generations/{id}", gh.GetGeneration)
		r.Get("/generations/{id}/flashcards", gh.ListProposals)

		r.Post("/flashcards", fh.CreateFlashcard)
		r.Get("/flashcards", fh.ListFlashcards)
		r.Get("/flashcards/{id}", fh.GetFlashcard)
		r.Put("/flashcards/{id}", fh.UpdateFlashcard)
		r.Delete("/flashcards/{id}", fh.DeleteFlashcard)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func strPtr(s string) *string { return &s }
