// Package metrics provides observability for the sandwatch server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Simulation metrics
	FramesBuilt   int64
	ParticlesPeak int64
	Completions   int64

	// Event ledger metrics
	EventsWritten    int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordFrame records a built frame and the particle population it carried.
func (c *Collector) RecordFrame(particles int) {
	atomic.AddInt64(&c.FramesBuilt, 1)
	if int64(particles) > atomic.LoadInt64(&c.ParticlesPeak) {
		atomic.StoreInt64(&c.ParticlesPeak, int64(particles))
	}
}

// RecordCompletion records one countdown reaching its end.
func (c *Collector) RecordCompletion() {
	atomic.AddInt64(&c.Completions, 1)
}

// RecordEventWrite records an event write to the ledger.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"simulation": map[string]interface{}{
			"frames_built":   atomic.LoadInt64(&c.FramesBuilt),
			"particles_peak": atomic.LoadInt64(&c.ParticlesPeak),
			"completions":    atomic.LoadInt64(&c.Completions),
		},

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP sandwatch_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE sandwatch_tick_count counter\n")
		fmt.Fprintf(w, "sandwatch_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP sandwatch_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE sandwatch_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "sandwatch_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP sandwatch_frames_built Total frames built\n")
		fmt.Fprintf(w, "# TYPE sandwatch_frames_built counter\n")
		fmt.Fprintf(w, "sandwatch_frames_built %d\n\n", atomic.LoadInt64(&c.FramesBuilt))

		fmt.Fprintf(w, "# HELP sandwatch_particles_peak Highest live particle count observed\n")
		fmt.Fprintf(w, "# TYPE sandwatch_particles_peak gauge\n")
		fmt.Fprintf(w, "sandwatch_particles_peak %d\n\n", atomic.LoadInt64(&c.ParticlesPeak))

		fmt.Fprintf(w, "# HELP sandwatch_completions Total countdowns completed\n")
		fmt.Fprintf(w, "# TYPE sandwatch_completions counter\n")
		fmt.Fprintf(w, "sandwatch_completions %d\n\n", atomic.LoadInt64(&c.Completions))

		fmt.Fprintf(w, "# HELP sandwatch_events_written Total ledger events written\n")
		fmt.Fprintf(w, "# TYPE sandwatch_events_written counter\n")
		fmt.Fprintf(w, "sandwatch_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP sandwatch_event_write_errors Total ledger write errors\n")
		fmt.Fprintf(w, "# TYPE sandwatch_event_write_errors counter\n")
		fmt.Fprintf(w, "sandwatch_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP sandwatch_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE sandwatch_ws_connections gauge\n")
		fmt.Fprintf(w, "sandwatch_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP sandwatch_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE sandwatch_ws_messages_total counter\n")
		fmt.Fprintf(w, "sandwatch_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "sandwatch_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
