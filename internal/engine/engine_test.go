package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/events"
	"github.com/sandwatch-io/sandwatch/internal/frame"
	"github.com/sandwatch-io/sandwatch/internal/platform/logger"
)

func testEngine(t *testing.T) (*Engine, *fakeClock, *events.EventLog, context.CancelFunc) {
	t.Helper()
	clock := newFakeClock()
	sim, err := NewSimulation(testConfig(), clock, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	el := events.NewEventLog(nil)
	e := NewEngine(sim, el, logger.NewLogger(), 2*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	return e, clock, el, cancel
}

func TestControlSurfaceTransitions(t *testing.T) {
	e, clock, el, cancel := testEngine(t)
	defer cancel()

	if st := e.CurrentState(); st != StateInitialized {
		t.Fatalf("expected Initialized, got %s", st)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if st := e.CurrentState(); st != StateRunning {
		t.Fatalf("expected Running, got %s", st)
	}

	clock.advance(2 * time.Second)
	if err := e.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if st := e.CurrentState(); st != StatePaused {
		t.Fatalf("expected Paused, got %s", st)
	}
	if rem := e.RemainingSeconds(); rem != 3 {
		t.Errorf("remaining = %d, want 3", rem)
	}

	if got := el.GetByType(events.EventTypeStarted); len(got) != 1 {
		t.Errorf("expected 1 started event, got %d", len(got))
	}
	if got := el.GetByType(events.EventTypePaused); len(got) != 1 {
		t.Errorf("expected 1 paused event, got %d", len(got))
	}
}

func TestSetDurationWhileRunningRejectedViaEngine(t *testing.T) {
	e, _, _, cancel := testEngine(t)
	defer cancel()

	e.Start()
	if err := e.SetDuration(9); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestFramesDeliveredToSubscriber(t *testing.T) {
	clock := newFakeClock()
	sim, err := NewSimulation(testConfig(), clock, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	e := NewEngine(sim, events.NewEventLog(nil), logger.NewLogger(), 2*time.Millisecond)

	var mu sync.Mutex
	var frames []*frame.Descriptor
	e.OnFrame(func(fd *frame.Descriptor) {
		mu.Lock()
		frames = append(frames, fd)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	e.Start()
	clock.advance(time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(frames)
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no tick frames delivered")
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if frames[0].State != string(StateRunning) {
		t.Errorf("first frame state = %s, want RUNNING", frames[0].State)
	}
}

func TestCompletionThroughTheLoop(t *testing.T) {
	e, clock, el, cancel := testEngine(t)
	defer cancel()

	e.Start()
	clock.advance(10 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for e.CurrentState() != StateCompleted {
		if time.Now().After(deadline) {
			t.Fatal("engine never completed")
		}
		time.Sleep(time.Millisecond)
	}

	if rem := e.RemainingSeconds(); rem != 0 {
		t.Errorf("remaining after completion = %d, want 0", rem)
	}
	if got := el.GetByType(events.EventTypeCompleted); len(got) != 1 {
		t.Errorf("expected 1 completed event, got %d", len(got))
	}

	// Completed -> Running is a full reset.
	if err := e.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if got := el.GetByType(events.EventTypeReset); len(got) != 1 {
		t.Errorf("expected 1 reset event, got %d", len(got))
	}
}
