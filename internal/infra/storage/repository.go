// Package storage provides the persistence layer for the timer event
// ledger. This package implements the repository pattern so the domain
// packages never see SQL. The ledger is history for audit and tooling, not
// resume state: a restarted server always begins Initialized.
package storage

import (
	"context"
	"time"
)

// TimerEventRecord mirrors the domain event structure for persistence.
// The events package should NOT import this; the adapter lives in cmd.
type TimerEventRecord struct {
	ID              string    `json:"id" db:"id"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	EventType       string    `json:"event_type" db:"event_type"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	ElapsedSeconds  float64   `json:"elapsed_seconds" db:"elapsed_seconds"`
	Detail          string    `json:"detail" db:"detail"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event TimerEventRecord) error

	// GetAll retrieves the full ledger in chronological order.
	GetAll(ctx context.Context) ([]TimerEventRecord, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]TimerEventRecord, error)
}
