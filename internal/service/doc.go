// Package service holds the application use cases: starting a generation and
// reporting its status, persisting a provider result, and editing flashcards.
//
// Services depend on the store interfaces and never on a concrete database.
// Store failures surface as ErrPersistence, missing or foreign rows as
// ErrNotFound, so the API layer can map them without knowing the store.
package service
