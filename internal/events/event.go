// Package events carries scan and queue notifications between
// components and records them in the events table.
package events

import "time"

// Event is a notification about one library, series or item. The bus
// fans it out to subscribers and the event log stores it as a row keyed
// by type and entity.
type Event interface {
	EventType() string
	EntityType() string // EntityLibrary, EntitySeries or EntityItem
	EntityID() int64
	OccurredAt() time.Time
}

// BaseEvent is embedded by every payload. Its fields become the indexed
// columns of the events table, next to the JSON of the whole payload.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent addresses an event to one entity, stamped now.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}
