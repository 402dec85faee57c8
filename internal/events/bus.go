package events

import (
	"context"
	"log/slog"
	"sync"
)

// Bus fans events out to in-process subscribers and, when an EventLog
// is attached, records each one before delivery.
type Bus struct {
	mu     sync.RWMutex
	byType map[string][]chan Event
	all    []chan Event
	store  *EventLog // may be nil
	log    *slog.Logger
	closed bool
}

// NewBus creates a bus. store may be nil to disable persistence.
func NewBus(store *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		byType: make(map[string][]chan Event),
		store:  store,
		log:    logger.With("component", "events"),
	}
}

// Publish records e and offers it to every matching subscriber. Delivery
// never blocks; a subscriber with a full buffer misses the event.
func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	targets := make([]chan Event, 0, len(b.byType[e.EventType()])+len(b.all))
	targets = append(targets, b.byType[e.EventType()]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	if b.store != nil {
		if _, err := b.store.Append(e); err != nil {
			b.log.Error("persist event", "type", e.EventType(), "error", err)
		}
	}

	for _, ch := range targets {
		select {
		case ch <- e:
		default:
			b.log.Warn("subscriber full, event dropped",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
	return nil
}

// Subscribe returns a channel receiving events of one type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.byType[eventType] = append(b.byType[eventType], ch)
	return ch
}

// SubscribeAll returns a channel receiving every event.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.all = append(b.all, ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.byType {
		if i := indexOf(subs, ch); i >= 0 {
			close(subs[i])
			b.byType[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
	if i := indexOf(b.all, ch); i >= 0 {
		close(b.all[i])
		b.all = append(b.all[:i], b.all[i+1:]...)
	}
}

func indexOf(subs []chan Event, ch <-chan Event) int {
	for i, sub := range subs {
		if sub == ch {
			return i
		}
	}
	return -1
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.byType {
		for _, ch := range subs {
			close(ch)
		}
	}
	for _, ch := range b.all {
		close(ch)
	}
	b.byType, b.all = nil, nil
	return nil
}
