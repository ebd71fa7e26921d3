package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedAction(name string) QueuedAction {
	return QueuedAction{
		ActionName: name,
		Payload:    json.RawMessage(`{}`),
		EnqueuedAt: time.Now(),
	}
}

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := NewActionQueue()
	q.Enqueue(queuedAction("place_tile"))
	q.Enqueue(queuedAction("place_tile"))
	q.Enqueue(queuedAction("end_turn"))
	require.Equal(t, 3, q.Len())

	var sent []string
	n := q.Drain(
		func(a QueuedAction) error {
			sent = append(sent, a.ActionName)
			return nil
		},
		nil,
	)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"place_tile", "place_tile", "end_turn"}, sent)
	assert.Equal(t, 0, q.Len())
}

func TestQueueNoDedup(t *testing.T) {
	q := NewActionQueue()
	same := queuedAction("draw")
	q.Enqueue(same)
	q.Enqueue(same)
	//duplicates are user intent, both survive
	assert.Equal(t, 2, q.Len())
}

func TestQueueDrainContinuesPastRejection(t *testing.T) {
	q := NewActionQueue()
	q.Enqueue(queuedAction("a"))
	q.Enqueue(queuedAction("b"))
	q.Enqueue(queuedAction("c"))

	boom := errors.New("invalid in current state")
	var sent, rejected []string
	n := q.Drain(
		func(a QueuedAction) error {
			if a.ActionName == "b" {
				return boom
			}
			sent = append(sent, a.ActionName)
			return nil
		},
		func(a QueuedAction, err error) {
			assert.ErrorIs(t, err, boom)
			rejected = append(rejected, a.ActionName)
		},
	)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "c"}, sent)
	assert.Equal(t, []string{"b"}, rejected)
	assert.Equal(t, 0, q.Len())
}

func TestQueueDrainEmpty(t *testing.T) {
	q := NewActionQueue()
	n := q.Drain(func(QueuedAction) error { return nil }, nil)
	assert.Equal(t, 0, n)
}

func TestQueueClear(t *testing.T) {
	q := NewActionQueue()
	q.Enqueue(queuedAction("a"))
	q.Clear()
	assert.Equal(t, 0, q.Len())
}
