// Package engine contains the timer state machine and the tick loop that
// drive the hourglass simulation.
//
// ARCHITECTURAL RULE: all simulation state is owned by one goroutine. The
// Engine serializes control calls onto its run loop; the Simulation itself
// is plain single-threaded code and never locks.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/frame"
	"github.com/sandwatch-io/sandwatch/internal/geometry"
	"github.com/sandwatch-io/sandwatch/internal/platform/config"
	"github.com/sandwatch-io/sandwatch/internal/sand"
)

// ErrInvalidStateTransition is returned when a control operation is not
// valid in the current state. The call is rejected without side effects.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// State is the timer lifecycle state.
type State string

const (
	StateInitialized State = "INITIALIZED"
	StateRunning     State = "RUNNING"
	StatePaused      State = "PAUSED"
	StateCompleted   State = "COMPLETED"
)

// Simulation is the synchronous core: glass geometry, sand fractions,
// particles, and the timer bookkeeping. One Advance call is one tick.
//
// Invariants: 0 <= elapsed <= duration; startedAt is set exactly while
// Running; the particle population never exceeds its cap.
type Simulation struct {
	shape     *geometry.GlassShape
	particles *sand.ParticleSystem
	builder   *frame.Builder
	clock     Clock

	state     State
	duration  time.Duration
	elapsed   time.Duration
	startedAt time.Time
	tick      int64
}

// NewSimulation validates the configuration and assembles the simulation.
// The generator seeds particle jitter and velocities; pass a seeded source
// for reproducible runs.
func NewSimulation(cfg *config.Config, clock Clock, rng *rand.Rand) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shape, err := cfg.Shape()
	if err != nil {
		return nil, err
	}

	return &Simulation{
		shape:     shape,
		particles: sand.NewParticleSystem(shape, rng, cfg.MaxParticles, cfg.FallStreamWidth/2),
		builder:   frame.NewBuilder(shape, cfg.ParticleRadius, cfg.FallStreamWidth),
		clock:     clock,
		state:     StateInitialized,
		duration:  time.Duration(cfg.DurationSeconds) * time.Second,
	}, nil
}

// State returns the current lifecycle state.
func (s *Simulation) State() State {
	return s.state
}

// DurationSeconds returns the configured countdown length.
func (s *Simulation) DurationSeconds() int {
	return int(s.duration / time.Second)
}

// ParticleCount returns the live particle population.
func (s *Simulation) ParticleCount() int {
	return s.particles.Count()
}

// Start drives Initialized->Running, Paused->Running (resume, previously
// accumulated elapsed time is kept) and Completed->Running (full reset).
// Starting while already Running is rejected.
func (s *Simulation) Start() error {
	switch s.state {
	case StateInitialized, StatePaused:
		s.startedAt = s.clock.Now()
		s.state = StateRunning
		return nil
	case StateCompleted:
		s.elapsed = 0
		s.particles.Clear()
		s.startedAt = s.clock.Now()
		s.state = StateRunning
		return nil
	default:
		return fmt.Errorf("%w: start while %s", ErrInvalidStateTransition, s.state)
	}
}

// Stop drives Running->Paused, folding the running span into the elapsed
// accumulator. Particle and sand state is preserved unchanged.
func (s *Simulation) Stop() error {
	if s.state != StateRunning {
		return fmt.Errorf("%w: stop while %s", ErrInvalidStateTransition, s.state)
	}
	s.elapsed += s.clock.Now().Sub(s.startedAt)
	if s.elapsed > s.duration {
		s.elapsed = s.duration
	}
	s.startedAt = time.Time{}
	s.state = StatePaused
	return nil
}

// SetDuration reconfigures the countdown length. Only valid while
// Initialized or Completed; rejected without side effects otherwise.
func (s *Simulation) SetDuration(seconds int) error {
	if s.state != StateInitialized && s.state != StateCompleted {
		return fmt.Errorf("%w: setDuration while %s", ErrInvalidStateTransition, s.state)
	}
	if seconds < 1 {
		return fmt.Errorf("%w: duration %d s, must be >= 1", geometry.ErrInvalidConfiguration, seconds)
	}
	s.duration = time.Duration(seconds) * time.Second
	return nil
}

// Elapsed returns the elapsed-equivalent time: the stored accumulator plus
// the current running span, clamped to the configured duration. Frozen
// while Paused.
func (s *Simulation) Elapsed() time.Duration {
	el := s.elapsed
	if s.state == StateRunning {
		el += s.clock.Now().Sub(s.startedAt)
	}
	if el < 0 {
		el = 0
	}
	if el > s.duration {
		el = s.duration
	}
	return el
}

// Progress returns elapsed over duration in [0,1].
func (s *Simulation) Progress() float64 {
	return sand.Compute(s.Elapsed(), s.duration).Progress
}

// RemainingSeconds returns the whole seconds left on the countdown,
// rounded up for display, never negative.
func (s *Simulation) RemainingSeconds() int {
	rem := s.duration - s.Elapsed()
	if rem <= 0 {
		return 0
	}
	return int(math.Ceil(rem.Seconds()))
}

// Advance performs one full simulation tick: elapsed -> fractions ->
// particle spawn/step -> completion check -> frame. Outside Running it
// builds a frame of the frozen state without mutating anything.
func (s *Simulation) Advance() *frame.Descriptor {
	if s.state != StateRunning {
		return s.Frame()
	}

	el := s.Elapsed()
	fr := sand.Compute(el, s.duration)

	// No sand left to fall means no new grains, ever.
	if fr.Top > 0 {
		s.particles.Spawn()
	}

	pile := fr.BottomPileHeight(s.shape)
	s.particles.Step(func(x float64) float64 {
		return sand.SurfaceYAt(s.shape, pile, x)
	})

	if el >= s.duration {
		s.complete()
		fr = sand.Compute(s.duration, s.duration)
	}

	s.tick++
	return s.buildFrame(fr)
}

// Frame builds a descriptor of the current state without advancing it.
func (s *Simulation) Frame() *frame.Descriptor {
	return s.buildFrame(sand.Compute(s.Elapsed(), s.duration))
}

// complete pins the terminal state: progress 1, no particles, no spawning.
func (s *Simulation) complete() {
	s.elapsed = s.duration
	s.startedAt = time.Time{}
	s.particles.Clear()
	s.state = StateCompleted
}

func (s *Simulation) buildFrame(fr sand.Fractions) *frame.Descriptor {
	return s.builder.Build(frame.Snapshot{
		Tick:             s.tick,
		State:            string(s.state),
		Running:          s.state == StateRunning,
		RemainingSeconds: s.RemainingSeconds(),
		Fractions:        fr,
		Particles:        s.particles.Particles(),
	})
}
