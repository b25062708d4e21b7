// Package events provides the append-only ledger of timer lifecycle
// transitions. Frames are deliberately not logged (one every tick is pure
// volume); state transitions are the auditable history of a countdown.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a timer event.
type EventType string

const (
	EventTypeStarted     EventType = "TIMER_STARTED"
	EventTypePaused      EventType = "TIMER_PAUSED"
	EventTypeResumed     EventType = "TIMER_RESUMED"
	EventTypeCompleted   EventType = "TIMER_COMPLETED"
	EventTypeReset       EventType = "TIMER_RESET"
	EventTypeDurationSet EventType = "DURATION_SET"
)

// TimerEvent is an immutable record of one lifecycle transition.
type TimerEvent struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Type            EventType `json:"type"`
	DurationSeconds int       `json:"duration_seconds"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	Detail          string    `json:"detail,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event TimerEvent) error
}

// EventLog is the in-memory append-only log, optionally backed by a
// persister that is written through asynchronously.
type EventLog struct {
	mu        sync.RWMutex
	events    []TimerEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]TimerEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event TimerEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		go func(e TimerEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByType returns all events of a specific type, in append order.
func (el *EventLog) GetByType(t EventType) []TimerEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []TimerEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full event history in append order.
func (el *EventLog) Replay() []TimerEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// NewEventID creates a unique event identifier.
func NewEventID() string {
	return uuid.NewString()
}
