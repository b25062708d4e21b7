package engine

import "time"

// Clock is the monotonic "now" provider consumed by the simulation.
// Injecting it keeps the state machine deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock (monotonic under the hood).
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
