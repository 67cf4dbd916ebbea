package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus is derived from a generation and its log; it is never
// persisted.
type GenerationStatus string

// Generation statuses. Completed and failed are terminal.
const (
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// Terminal reports whether no further transition can occur.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// Generation records one request to turn input text into proposals.
// ResponseTime is non-nil once the provider call has finished.
type Generation struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	RequestTime    time.Time  `json:"request_time"`
	ResponseTime   *time.Time `json:"response_time"`
	TokenCount     *int       `json:"token_count"`
	Model          *string    `json:"model"`
	GeneratedCount *int       `json:"generated_count"`
}

// GenerationLog is the 1:1 audit record of a generation. ErrorInfo, once
// set, is never cleared.
type GenerationLog struct {
	GenerationID uuid.UUID  `json:"generation_id"`
	RequestTime  time.Time  `json:"request_time"`
	ResponseTime *time.Time `json:"response_time"`
	TokenCount   *int       `json:"token_count"`
	ErrorInfo    *string    `json:"error_info"`
	ErrorCode    *string    `json:"error_code"`
	InputLength  int        `json:"input_length"`
	InputHash    string     `json:"input_hash"`
}

// GenerationResult carries what the provider reported for a finished call.
type GenerationResult struct {
	ResponseTime   time.Time
	TokenCount     *int
	Model          *string
	GeneratedCount int
}

// DeriveStatus computes the status of a generation from its two records.
// A missing log is treated as having no error.
func DeriveStatus(gen *Generation, log *GenerationLog) GenerationStatus {
	if log != nil && log.ErrorInfo != nil {
		return GenerationStatusFailed
	}
	if gen != nil && gen.ResponseTime != nil {
		return GenerationStatusCompleted
	}
	return GenerationStatusProcessing
}

// GenerationSnapshot is what a status poll observes at one point in time.
type GenerationSnapshot struct {
	Status     GenerationStatus `json:"status"`
	Generation *Generation      `json:"generation"`
	Log        *GenerationLog   `json:"log"`
	Proposals  []*Flashcard     `json:"proposals"`
}

// NewGenerationSnapshot assembles a snapshot and derives its status.
func NewGenerationSnapshot(gen *Generation, log *GenerationLog, proposals []*Flashcard) *GenerationSnapshot {
	if proposals == nil {
		proposals = []*Flashcard{}
	}
	return &GenerationSnapshot{
		Status:     DeriveStatus(gen, log),
		Generation: gen,
		Log:        log,
		Proposals:  proposals,
	}
}
