package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vmunix/mediarr/internal/events"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "limit must be non-negative")
		return
	}
	const maxLimit = 1000
	if limit > maxLimit {
		limit = maxLimit
	}

	if s.deps.EventLog == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_LOG", "Event log not configured")
		return
	}

	q := r.URL.Query()
	var (
		recent []events.RawEvent
		err    error
	)
	switch {
	case q.Get("entity_type") != "":
		id, perr := strconv.ParseInt(q.Get("entity_id"), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ENTITY", "entity_id must be an integer")
			return
		}
		recent, err = s.deps.EventLog.ForEntity(q.Get("entity_type"), id)
	case q.Get("since") != "":
		since, perr := time.Parse(time.RFC3339, q.Get("since"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_SINCE", "since must be an RFC3339 timestamp")
			return
		}
		recent, err = s.deps.EventLog.Since(since)
	default:
		recent, err = s.deps.EventLog.Recent(limit, q["type"]...)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
		return
	}
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	items := eventsToResponse(recent, q.Get("payload") == "true")
	writeJSON(w, http.StatusOK, listEventsResponse{Items: items, Total: len(items)})
}

func eventsToResponse(raw []events.RawEvent, payload bool) []EventResponse {
	out := make([]EventResponse, len(raw))
	for i, e := range raw {
		out[i] = EventResponse{
			ID:         e.ID,
			EventType:  e.EventType,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
		if payload {
			out[i].Payload = e.Payload
		}
	}
	return out
}
