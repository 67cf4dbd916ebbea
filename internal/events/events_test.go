package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	payload := GenerationRequested{
		GenerationID: uuid.New(),
		UserID:       uuid.New(),
		InputText:    "some text",
	}

	event, err := NewTaskRequestEvent(EventTypeGenerationRequested, payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventTypeGenerationRequested, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded GenerationRequested
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewTaskRequestEvent_UnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestUnmarshalPayload_Malformed(t *testing.T) {
	t.Parallel()

	event := &TaskRequestEvent{Type: EventTypeGenerationRequested, Payload: []byte(`{"generation_id": 5}`)}
	var decoded GenerationRequested
	err := event.UnmarshalPayload(&decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventTypeGenerationRequested)
}

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	LastEvent    *TaskRequestEvent
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEmitterFunc(t *testing.T) {
	t.Parallel()

	var got *TaskRequestEvent
	emitter := EmitterFunc(func(_ context.Context, event *TaskRequestEvent) error {
		got = event
		return nil
	})

	event, err := NewTaskRequestEvent("x", struct{}{})
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Same(t, event, got)
}
