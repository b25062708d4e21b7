package engine

import (
	"context"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/events"
	"github.com/sandwatch-io/sandwatch/internal/frame"
	"github.com/sandwatch-io/sandwatch/internal/platform/logger"
	"github.com/sandwatch-io/sandwatch/internal/platform/metrics"
)

// FrameFunc receives each built frame descriptor. The descriptor is an
// immutable value; subscribers never get a handle into live state.
type FrameFunc func(*frame.Descriptor)

// Status is the read-only control-surface view of the timer.
type Status struct {
	State            State   `json:"state"`
	DurationSeconds  int     `json:"duration_seconds"`
	RemainingSeconds int     `json:"remaining_seconds"`
	Progress         float64 `json:"progress"`
	Particles        int     `json:"particles"`
}

// Engine wraps the Simulation with the tick scheduler and the control
// surface. Every touch of simulation state happens on the Run goroutine;
// control calls are serialized onto it through a command channel, so the
// single-owner model survives a concurrent transport on top.
type Engine struct {
	sim      *Simulation
	eventLog *events.EventLog
	logger   *logger.Logger
	interval time.Duration

	commands chan func()
	onFrame  FrameFunc
}

// NewEngine wires the simulation to its scheduler and event ledger.
func NewEngine(sim *Simulation, eventLog *events.EventLog, log *logger.Logger, interval time.Duration) *Engine {
	return &Engine{
		sim:      sim,
		eventLog: eventLog,
		logger:   log,
		interval: interval,
		commands: make(chan func()),
	}
}

// OnFrame registers the frame subscriber. Must be called before Run.
func (e *Engine) OnFrame(fn FrameFunc) {
	e.onFrame = fn
}

// Run is the engine's main loop: one tick per interval while Running, plus
// serialized control commands. Blocks until the context is cancelled. An
// in-flight tick always completes; cancellation takes effect between ticks.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Engine loop started. The sand is ready.")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped by context.")
			return
		case cmd := <-e.commands:
			cmd()
		case <-ticker.C:
			if e.sim.State() != StateRunning {
				continue
			}
			started := time.Now()
			fd := e.sim.Advance()
			if e.sim.State() == StateCompleted {
				e.appendEvent(events.EventTypeCompleted, "countdown reached zero")
				metrics.Get().RecordCompletion()
				e.logger.Event(string(events.EventTypeCompleted), "all sand is down")
			}
			e.publish(fd)
			metrics.Get().RecordTick(time.Since(started))
		}
	}
}

// do executes fn on the run loop and waits for it. Run must be active.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	e.commands <- func() {
		fn()
		close(done)
	}
	<-done
}

// Start starts or resumes the countdown; from Completed it performs a full
// reset first. Each successful transition is logged, appended to the event
// ledger, and answered with a fresh frame for connected renderers.
func (e *Engine) Start() error {
	var err error
	e.do(func() {
		prev := e.sim.State()
		if err = e.sim.Start(); err != nil {
			return
		}
		switch prev {
		case StatePaused:
			e.appendEvent(events.EventTypeResumed, "resumed with accumulated elapsed time")
		case StateCompleted:
			e.appendEvent(events.EventTypeReset, "restart after completion")
			e.appendEvent(events.EventTypeStarted, "countdown started")
		default:
			e.appendEvent(events.EventTypeStarted, "countdown started")
		}
		e.publish(e.sim.Frame())
	})
	return err
}

// Stop pauses the countdown, preserving elapsed time and live particles.
func (e *Engine) Stop() error {
	var err error
	e.do(func() {
		if err = e.sim.Stop(); err != nil {
			return
		}
		e.appendEvent(events.EventTypePaused, "countdown paused")
		e.publish(e.sim.Frame())
	})
	return err
}

// SetDuration reconfigures the countdown length, only while Initialized or
// Completed.
func (e *Engine) SetDuration(seconds int) error {
	var err error
	e.do(func() {
		if err = e.sim.SetDuration(seconds); err != nil {
			return
		}
		e.appendEvent(events.EventTypeDurationSet, "duration reconfigured")
		e.publish(e.sim.Frame())
	})
	return err
}

// CurrentState returns the timer state.
func (e *Engine) CurrentState() State {
	var st State
	e.do(func() { st = e.sim.State() })
	return st
}

// RemainingSeconds returns the display-ready remaining whole seconds.
func (e *Engine) RemainingSeconds() int {
	var rem int
	e.do(func() { rem = e.sim.RemainingSeconds() })
	return rem
}

// CurrentStatus returns the full control-surface view in one hop.
func (e *Engine) CurrentStatus() Status {
	var st Status
	e.do(func() {
		st = Status{
			State:            e.sim.State(),
			DurationSeconds:  e.sim.DurationSeconds(),
			RemainingSeconds: e.sim.RemainingSeconds(),
			Progress:         e.sim.Progress(),
			Particles:        e.sim.ParticleCount(),
		}
	})
	return st
}

func (e *Engine) publish(fd *frame.Descriptor) {
	metrics.Get().RecordFrame(e.sim.ParticleCount())
	if e.onFrame != nil {
		e.onFrame(fd)
	}
}

func (e *Engine) appendEvent(t events.EventType, detail string) {
	e.eventLog.Append(events.TimerEvent{
		ID:              events.NewEventID(),
		Timestamp:       time.Now(),
		Type:            t,
		DurationSeconds: e.sim.DurationSeconds(),
		ElapsedSeconds:  e.sim.Elapsed().Seconds(),
		Detail:          detail,
	})
}
