// Package store declares the persistence contracts for generations, their
// logs and flashcards. Implementations live under internal/platform.
//
// Each method writes a single row of a single table; no operation spans
// generations, generation logs and flashcards at once.
package store
