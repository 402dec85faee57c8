package events

// Entity types.
const (
	EntityLibrary = "library"
	EntitySeries  = "series"
	EntityItem    = "item"
)

// Event types.
const (
	EventScanStarted     = "scan.started"
	EventScanCompleted   = "scan.completed"
	EventSeriesUnmatched = "series.unmatched"
	EventQueueItemFailed = "queue.item_failed"
)

// ScanStarted is emitted when a scan pass of a library begins.
type ScanStarted struct {
	BaseEvent
	RunID   string `json:"run_id"`
	Library string `json:"library"`
	Mode    string `json:"mode"` // "full", "quick", "missing", "refresh"
}

// ScanCompleted is emitted when a scan pass ends, successfully or not.
type ScanCompleted struct {
	BaseEvent
	RunID         string `json:"run_id"`
	Library       string `json:"library"`
	Mode          string `json:"mode"`
	SeriesAdded   int    `json:"series_added,omitempty"`
	SeriesReused  int    `json:"series_reused,omitempty"`
	EpisodesAdded int    `json:"episodes_added,omitempty"`
	MoviesAdded   int    `json:"movies_added,omitempty"`
	FilesAdded    int    `json:"files_added,omitempty"`
	FilesRemoved  int    `json:"files_removed,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
}

// SeriesUnmatched is emitted when no provider recognized a series folder.
type SeriesUnmatched struct {
	BaseEvent
	LibraryID    int64  `json:"library_id"`
	Folder       string `json:"folder"`
	Title        string `json:"title"`
	Year         int    `json:"year,omitempty"`
	AttemptCount int    `json:"attempt_count"`
	Reason       string `json:"reason"`
}

// QueueItemFailed is emitted when a queue entry exhausts its attempts.
type QueueItemFailed struct {
	BaseEvent
	Queue    string `json:"queue"` // "image" or "thumbnail"
	JobID    int64  `json:"job_id"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}
