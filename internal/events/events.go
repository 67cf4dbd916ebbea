package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypeGenerationRequested is emitted once a generation and its log exist
// and the background continuation should start.
const EventTypeGenerationRequested = "generation.requested"

// TaskRequestEvent represents a request to create a background task.
type TaskRequestEvent struct {
	// ID uniquely identifies the event.
	ID uuid.UUID `json:"id"`

	// Type selects the handler behaviour, e.g. EventTypeGenerationRequested.
	Type string `json:"type"`

	// Payload holds the type-specific data as JSON.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// GenerationRequested is the payload of EventTypeGenerationRequested.
type GenerationRequested struct {
	GenerationID uuid.UUID `json:"generation_id"`
	UserID       uuid.UUID `json:"user_id"`
	InputText    string    `json:"input_text"`
}

// UnmarshalPayload decodes the payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// NewTaskRequestEvent creates an event with a fresh ID and the JSON encoding
// of payload.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes events.
type EventHandler interface {
	// HandleEvent processes one event. Handlers ignore types they do not own.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter dispatches events to the registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EmitterFunc adapts a function to the EventEmitter interface.
type EmitterFunc func(ctx context.Context, event *TaskRequestEvent) error

// EmitEvent calls f(ctx, event).
func (f EmitterFunc) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}
