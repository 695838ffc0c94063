package session

import (
	"sync"

	"github.com/milk9111/hextactics/hex"
)

// EventKind identifies a session event.
type EventKind string

const (
	EventGridReady           EventKind = "grid_ready"
	EventCellStateChanged    EventKind = "cell_state_changed"
	EventIntegrationComplete EventKind = "integration_complete"
)

// Event is a session notification. Data holds one of the payload types below.
type Event struct {
	Kind EventKind
	Data any
}

// GridReady is emitted when a generation request completes.
type GridReady struct {
	Width  int
	Height int
	Cells  int
}

// CellStateChanged is emitted once per enabled-state toggle.
type CellStateChanged struct {
	Coord   hex.Axial
	Enabled bool
}

// IntegrationComplete is emitted once per full classification pass.
type IntegrationComplete struct {
	Enabled  int
	Disabled int
	Toggled  int
}

// EventQueue is a FIFO queue safe for concurrent producers.
type EventQueue struct {
	mu    sync.Mutex
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, evt)
	q.mu.Unlock()
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
