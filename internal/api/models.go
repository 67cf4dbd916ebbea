package api

import (
	"time"

	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/generation"
)

// CreateGenerationRequest is the body of POST /api/generations. Length
// bounds are enforced by the service on the trimmed text.
type CreateGenerationRequest struct {
	InputText string `json:"input_text" validate:"required"`
}

// InitiateResponse is returned with 202 Accepted once a generation exists.
type InitiateResponse struct {
	GenerationID string `json:"generation_id"`
	Status       string `json:"status"`
}

// GenerationResponse is the wire form of a generation.
type GenerationResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	RequestTime    time.Time  `json:"request_time"`
	ResponseTime   *time.Time `json:"response_time"`
	TokenCount     *int       `json:"token_count"`
	Model          *string    `json:"model"`
	GeneratedCount *int       `json:"generated_count"`
}

// GenerationLogResponse is the wire form of a generation log.
type GenerationLogResponse struct {
	RequestTime  time.Time  `json:"request_time"`
	ResponseTime *time.Time `json:"response_time"`
	TokenCount   *int       `json:"token_count"`
	ErrorInfo    *string    `json:"error_info"`
	ErrorCode    *string    `json:"error_code"`
	InputLength  int        `json:"input_length"`
	InputHash    string     `json:"input_hash"`
}

// SnapshotResponse is the body of GET /api/generations/{id}.
type SnapshotResponse struct {
	Status     string                 `json:"status"`
	Generation GenerationResponse     `json:"generation"`
	Log        *GenerationLogResponse `json:"log"`
	Proposals  []FlashcardResponse    `json:"proposals"`
	// ErrorMessage is user-facing text for a failed generation.
	ErrorMessage string `json:"error_message,omitempty"`
}

// FlashcardResponse is the wire form of a flashcard.
type FlashcardResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	GenerationID *string   `json:"generation_id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateFlashcardRequest is the body of POST /api/flashcards.
type CreateFlashcardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"  validate:"required"`
}

// UpdateFlashcardRequest is the body of PUT /api/flashcards/{id}. Omitted
// fields are left unchanged.
type UpdateFlashcardRequest struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
}

// ListResponse wraps a page of results.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func generationToResponse(g *domain.Generation) GenerationResponse {
	return GenerationResponse{
		ID:             g.ID.String(),
		UserID:         g.UserID.String(),
		RequestTime:    g.RequestTime,
		ResponseTime:   g.ResponseTime,
		TokenCount:     g.TokenCount,
		Model:          g.Model,
		GeneratedCount: g.GeneratedCount,
	}
}

func generationLogToResponse(l *domain.GenerationLog) *GenerationLogResponse {
	if l == nil {
		return nil
	}
	return &GenerationLogResponse{
		RequestTime:  l.RequestTime,
		ResponseTime: l.ResponseTime,
		TokenCount:   l.TokenCount,
		ErrorInfo:    l.ErrorInfo,
		ErrorCode:    l.ErrorCode,
		InputLength:  l.InputLength,
		InputHash:    l.InputHash,
	}
}

func flashcardToResponse(c *domain.Flashcard) FlashcardResponse {
	resp := FlashcardResponse{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		Front:     c.Front,
		Back:      c.Back,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.GenerationID != nil {
		id := c.GenerationID.String()
		resp.GenerationID = &id
	}
	return resp
}

func flashcardsToResponse(cards []*domain.Flashcard) []FlashcardResponse {
	out := make([]FlashcardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, flashcardToResponse(c))
	}
	return out
}

func snapshotToResponse(s *domain.GenerationSnapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Status:     string(s.Status),
		Generation: generationToResponse(s.Generation),
		Log:        generationLogToResponse(s.Log),
		Proposals:  flashcardsToResponse(s.Proposals),
	}
	if s.Status == domain.GenerationStatusFailed {
		category := generation.CategoryGeneric
		if s.Log != nil && s.Log.ErrorCode != nil {
			category = generation.Category(*s.Log.ErrorCode)
		}
		resp.ErrorMessage = category.UserMessage()
	}
	return resp
}
