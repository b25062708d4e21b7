package sand

import (
	"math/rand"

	"github.com/sandwatch-io/sandwatch/internal/geometry"
)

// Fall velocity range in pixels per tick. Each particle draws its velocity
// once at spawn and keeps it for life.
const (
	minFallVelocity = 3.0
	maxFallVelocity = 6.0
)

// Particle is one grain of falling sand. X is fixed at spawn; Y only ever
// grows. Particles are owned exclusively by the ParticleSystem.
type Particle struct {
	X  float64
	Y  float64
	VY float64
}

// ParticleSystem owns the live particle collection: spawn policy,
// per-tick integration, collision against the pile surface, and eviction.
// Particles never interact with each other, only with the aggregate pile,
// which keeps a tick at O(particles).
type ParticleSystem struct {
	shape  *geometry.GlassShape
	rng    *rand.Rand
	max    int
	jitter float64

	particles []Particle
}

// NewParticleSystem creates an empty particle collection. The generator is
// injected so physics steps are reproducible under a seeded source; maximum
// is the hard population ceiling.
func NewParticleSystem(shape *geometry.GlassShape, rng *rand.Rand, maximum int, jitter float64) *ParticleSystem {
	return &ParticleSystem{
		shape:     shape,
		rng:       rng,
		max:       maximum,
		jitter:    jitter,
		particles: make([]Particle, 0, maximum),
	}
}

// Spawn injects one to three new particles at the neck's horizontal center
// with a small random jitter. The population cap is enforced by skipping
// spawns, never by evicting live particles. The caller gates on timer state
// and remaining sand.
func (ps *ParticleSystem) Spawn() {
	n := 1 + ps.rng.Intn(3)
	for i := 0; i < n; i++ {
		if len(ps.particles) >= ps.max {
			return
		}
		ps.particles = append(ps.particles, Particle{
			X:  ps.shape.CenterX() + (ps.rng.Float64()*2-1)*ps.jitter,
			Y:  ps.shape.MidY,
			VY: minFallVelocity + ps.rng.Float64()*(maxFallVelocity-minFallVelocity),
		})
	}
}

// Step advances every live particle by its velocity and removes, within the
// same tick, every particle that reached or passed the pile surface at its
// horizontal position. No removed particle survives into the next frame.
func (ps *ParticleSystem) Step(surfaceYAt func(x float64) float64) {
	alive := ps.particles[:0]
	for _, p := range ps.particles {
		p.Y += p.VY
		if p.Y >= surfaceYAt(p.X) {
			continue
		}
		alive = append(alive, p)
	}
	ps.particles = alive
}

// Clear empties the collection. Used on reset and completion so restarts
// begin from a clean state.
func (ps *ParticleSystem) Clear() {
	ps.particles = ps.particles[:0]
}

// Count returns the live particle population.
func (ps *ParticleSystem) Count() int {
	return len(ps.particles)
}

// Particles returns a read-only view of the live collection. The slice is
// only valid until the next Spawn/Step/Clear.
func (ps *ParticleSystem) Particles() []Particle {
	return ps.particles
}
