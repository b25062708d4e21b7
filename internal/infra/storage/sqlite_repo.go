package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteEventRepository implements EventRepository on the embedded database.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite event repository.
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

// Append inserts a new event into the immutable ledger.
func (r *SQLiteEventRepository) Append(ctx context.Context, event TimerEventRecord) error {
	query := `
		INSERT INTO timer_events (id, timestamp, event_type, duration_seconds, elapsed_seconds, detail)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.EventType,
		event.DurationSeconds,
		event.ElapsedSeconds,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append timer event: %w", err)
	}
	return nil
}

// GetAll retrieves the full ledger in chronological order.
func (r *SQLiteEventRepository) GetAll(ctx context.Context) ([]TimerEventRecord, error) {
	query := `
		SELECT id, timestamp, event_type, duration_seconds, elapsed_seconds, detail
		FROM timer_events ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query timer events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByEventType retrieves all events of a specific type.
func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType string) ([]TimerEventRecord, error) {
	query := `
		SELECT id, timestamp, event_type, duration_seconds, elapsed_seconds, detail
		FROM timer_events WHERE event_type = ? ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to query timer events by type: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]TimerEventRecord, error) {
	var events []TimerEventRecord
	for rows.Next() {
		var e TimerEventRecord
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.EventType, &e.DurationSeconds, &e.ElapsedSeconds, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan timer event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
