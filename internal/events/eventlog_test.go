package events

import (
	"sync"
	"testing"
	"time"
)

type recordingPersister struct {
	mu     sync.Mutex
	stored []TimerEvent
}

func (p *recordingPersister) Append(e TimerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stored = append(p.stored, e)
	return nil
}

func TestAppendAndReplayOrder(t *testing.T) {
	el := NewEventLog(nil)

	types := []EventType{EventTypeStarted, EventTypePaused, EventTypeResumed, EventTypeCompleted}
	for _, ty := range types {
		el.Append(TimerEvent{ID: NewEventID(), Timestamp: time.Now(), Type: ty})
	}

	replay := el.Replay()
	if len(replay) != len(types) {
		t.Fatalf("expected %d events, got %d", len(types), len(replay))
	}
	for i, e := range replay {
		if e.Type != types[i] {
			t.Errorf("event %d: got %s, want %s", i, e.Type, types[i])
		}
	}
}

func TestGetByType(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(TimerEvent{ID: NewEventID(), Type: EventTypeStarted})
	el.Append(TimerEvent{ID: NewEventID(), Type: EventTypePaused})
	el.Append(TimerEvent{ID: NewEventID(), Type: EventTypeStarted})

	if got := el.GetByType(EventTypeStarted); len(got) != 2 {
		t.Errorf("expected 2 started events, got %d", len(got))
	}
	if got := el.GetByType(EventTypeCompleted); len(got) != 0 {
		t.Errorf("expected no completed events, got %d", len(got))
	}
}

func TestWriteThroughPersister(t *testing.T) {
	p := &recordingPersister{}
	el := NewEventLog(p)

	el.Append(TimerEvent{ID: NewEventID(), Type: EventTypeStarted})

	// The write-through is async; give it a moment.
	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		n := len(p.stored)
		p.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("persister never received the event")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEventIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewEventID()
		if seen[id] {
			t.Fatalf("duplicate event id %s", id)
		}
		seen[id] = true
	}
}
