package events

import (
	"encoding/json"
	"fmt"
)

// payloadTypes maps each event type to a constructor of its concrete struct.
var payloadTypes = map[string]func() Event{
	EventScanStarted:     func() Event { return &ScanStarted{} },
	EventScanCompleted:   func() Event { return &ScanCompleted{} },
	EventSeriesUnmatched: func() Event { return &SeriesUnmatched{} },
	EventQueueItemFailed: func() Event { return &QueueItemFailed{} },
}

// Decode rebuilds the concrete event stored in raw.
func Decode(raw RawEvent) (Event, error) {
	newEvent, ok := payloadTypes[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("decode event %d: unknown type %q", raw.ID, raw.EventType)
	}
	e := newEvent()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("decode event %d: %w", raw.ID, err)
	}
	return e, nil
}
