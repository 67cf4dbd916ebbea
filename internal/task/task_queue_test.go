package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()
	queue := NewTaskQueue(2, testLogger())

	require.NoError(t, queue.Enqueue(newMockTask(nil)))
	require.NoError(t, queue.Enqueue(newMockTask(nil)))
	assert.Equal(t, 2, queue.Len())

	err := queue.Enqueue(newMockTask(nil))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueue_Close(t *testing.T) {
	t.Parallel()
	queue := NewTaskQueue(2, testLogger())
	first := newMockTask(nil)
	require.NoError(t, queue.Enqueue(first))

	queue.Close()
	queue.Close()

	assert.ErrorIs(t, queue.Enqueue(newMockTask(nil)), ErrQueueClosed)

	got, ok := <-queue.GetChannel()
	require.True(t, ok, "queued tasks stay readable after close")
	assert.Equal(t, first.ID(), got.ID())

	_, ok = <-queue.GetChannel()
	assert.False(t, ok)
}

func TestTaskQueue_MinimumSize(t *testing.T) {
	t.Parallel()
	queue := NewTaskQueue(0, testLogger())
	assert.NoError(t, queue.Enqueue(newMockTask(nil)))
}
