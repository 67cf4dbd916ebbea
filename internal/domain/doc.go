// Package domain contains the core business entities of the flashcard
// generation pipeline: generations and their logs, flashcards, and the
// transient snapshot assembled for status polling. It also holds the pure
// rules that govern them, namely the derived generation status and the
// flashcard type state machine. Nothing in this package performs I/O.
package domain
