package session

import (
	"encoding/json"
	"time"
)

/*
 * offline action queue
 * - fifo, append only while disconnected
 * - no dedup, exact user intent order is preserved
 * - a rejected replay is surfaced for that one action, the
 *   rest of the queue keeps draining
 */

//one buffered action
type QueuedAction struct {
	ActionName string
	Payload    json.RawMessage
	EnqueuedAt time.Time
}

//face info
type ActionQueue struct {
	items []QueuedAction
}

//construct
func NewActionQueue() *ActionQueue {
	//self init
	this := &ActionQueue{
		items: make([]QueuedAction, 0),
	}
	return this
}

//append to the tail
func (f *ActionQueue) Enqueue(action QueuedAction) {
	f.items = append(f.items, action)
}

//buffered count
func (f *ActionQueue) Len() int {
	return len(f.items)
}

//replay all actions strictly in enqueue order, then clear
//send errors are reported per action via onReject and do not stop the drain
func (f *ActionQueue) Drain(
	send func(QueuedAction) error,
	onReject func(QueuedAction, error),
) int {
	drained := f.items
	f.items = make([]QueuedAction, 0)

	sent := 0
	for _, action := range drained {
		if err := send(action); err != nil {
			if onReject != nil {
				onReject(action, err)
			}
			continue
		}
		sent++
	}
	return sent
}

//drop everything, used on intentional close
func (f *ActionQueue) Clear() {
	f.items = f.items[:0]
}
