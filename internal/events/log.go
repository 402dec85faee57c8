package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventLog is the events table. Rows are append-only apart from Prune.
type EventLog struct {
	db *sql.DB
}

// NewEventLog wraps db, which must carry the events migration.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// RawEvent is a stored row. Payload is the JSON encoding of the
// published event, including its BaseEvent fields.
type RawEvent struct {
	ID         int64
	EventType  string
	EntityType string
	EntityID   int64
	Payload    string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// Append stores e and returns the row ID.
func (l *EventLog) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode %s event: %w", e.EventType(), err)
	}
	res, err := l.db.Exec(
		"INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at) VALUES (?, ?, ?, ?, ?)",
		e.EventType(), e.EntityType(), e.EntityID(), string(payload), e.OccurredAt().UTC())
	if err != nil {
		return 0, fmt.Errorf("append %s event: %w", e.EventType(), err)
	}
	return res.LastInsertId()
}

// Since returns the events that occurred at or after t, oldest first.
func (l *EventLog) Since(t time.Time) ([]RawEvent, error) {
	return l.query("WHERE occurred_at >= ? ORDER BY id", t.UTC())
}

// ForEntity returns the events about one library, series or item, oldest first.
func (l *EventLog) ForEntity(entityType string, entityID int64) ([]RawEvent, error) {
	return l.query("WHERE entity_type = ? AND entity_id = ? ORDER BY id", entityType, entityID)
}

// Recent returns up to limit events, newest first, optionally only of
// the given types.
func (l *EventLog) Recent(limit int, types ...string) ([]RawEvent, error) {
	var where string
	args := make([]any, 0, len(types)+1)
	if len(types) > 0 {
		where = "WHERE event_type IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(types)), ", ") + ") "
		for _, typ := range types {
			args = append(args, typ)
		}
	}
	return l.query(where+"ORDER BY id DESC LIMIT ?", append(args, limit)...)
}

// Prune deletes events that occurred more than age ago.
func (l *EventLog) Prune(age time.Duration) (int64, error) {
	res, err := l.db.Exec("DELETE FROM events WHERE occurred_at < ?", time.Now().Add(-age).UTC())
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

func (l *EventLog) query(clause string, args ...any) ([]RawEvent, error) {
	rows, err := l.db.Query(
		"SELECT id, event_type, entity_type, entity_id, payload, occurred_at, created_at FROM events "+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &e.EntityID, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
