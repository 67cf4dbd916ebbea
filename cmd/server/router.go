package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-gen/internal/api"
	apiMiddleware "github.com/phrazzld/scry-gen/internal/api/middleware"
	"github.com/phrazzld/scry-gen/internal/metrics"
)

// setupRouter registers middleware and routes on a new chi router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/generations", generationHandler.CreateGeneration)
			r.Get("/generations", generationHandler.ListGenerations)
			r.Get("/generations/{id}", generationHandler.GetGeneration)
			r.Get("/generations/{id}/flashcards", generationHandler.ListProposals)

			r.Post("/flashcards", flashcardHandler.CreateFlashcard)
			r.Get("/flashcards", flashcardHandler.ListFlashcards)
			r.Get("/flashcards/{id}", flashcardHandler.GetFlashcard)
			r.Put("/flashcards/{id}", flashcardHandler.UpdateFlashcard)
			r.Delete("/flashcards/{id}", flashcardHandler.DeleteFlashcard)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}
