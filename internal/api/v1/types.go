package v1

import (
	"time"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/queue"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type libraryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Series   int    `json:"series"`
	Episodes int    `json:"episodes"`
	Movies   int    `json:"movies"`
}

type listLibrariesResponse struct {
	Items []libraryResponse `json:"items"`
	Total int               `json:"total"`
}

type queuesResponse struct {
	Images     queue.Counts `json:"images"`
	Thumbnails queue.Counts `json:"thumbnails"`
}

type unmatchedResponse struct {
	ID             int64     `json:"id"`
	LibraryID      int64     `json:"library_id"`
	SeriesID       int64     `json:"series_id"`
	FolderName     string    `json:"folder_name"`
	AttemptedTitle string    `json:"attempted_title"`
	AttemptedYear  int       `json:"attempted_year,omitempty"`
	FailureReason  string    `json:"failure_reason"`
	AttemptCount   int       `json:"attempt_count"`
	LastAttemptAt  time.Time `json:"last_attempt_at"`
}

type listUnmatchedResponse struct {
	Items []unmatchedResponse `json:"items"`
	Total int                 `json:"total"`
}

type catalogStatus struct {
	Loaded  bool `json:"loaded"`
	Entries int  `json:"entries"`
}

// EventResponse is a stored event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Payload    string `json:"payload,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// StatusResponse is the response for GET /status.
type StatusResponse struct {
	Status    string                  `json:"status"`
	Version   string                  `json:"version"`
	Uptime    string                  `json:"uptime"`
	Libraries int                     `json:"libraries"`
	Queues    queuesResponse          `json:"queues"`
	Catalog   *catalogStatus          `json:"catalog,omitempty"`
	LastScans []*events.ScanCompleted `json:"last_scans"`
}
