// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/library"
)

// Server is the v1 API server.
type Server struct {
	deps    ServerDeps
	started time.Time
	log     *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, logger *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, started: time.Now(), log: logger.With("component", "api")}, nil
}

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// RegisterRoutes registers API routes on the given router.
func (s *Server) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/libraries", s.listLibraries).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}/scan", s.scanLibrary).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.refreshAll).Methods(http.MethodPost)
	api.HandleFunc("/scan", s.scanAll).Methods(http.MethodPost)
	api.HandleFunc("/queues", s.getQueues).Methods(http.MethodGet)
	api.HandleFunc("/unmatched", s.listUnmatched).Methods(http.MethodGet)
	api.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)
}

// Handler returns a router serving the API with request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	r.Use(LogRequests(s.log))
	return r
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts an integer ID from the route variables.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	libs, err := s.deps.Library.ListLibraries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	queues, err := s.queueCounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := StatusResponse{
		Status:    "ok",
		Version:   s.deps.Version,
		Uptime:    time.Since(s.started).Truncate(time.Second).String(),
		Libraries: len(libs),
		Queues:    *queues,
		LastScans: []*events.ScanCompleted{},
	}
	if s.deps.Catalog != nil {
		resp.Catalog = &catalogStatus{Loaded: s.deps.Catalog.Loaded(), Entries: s.deps.Catalog.Len()}
	}
	if s.deps.EventLog != nil {
		recent, err := s.deps.EventLog.Recent(5, events.EventScanCompleted)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "EVENT_ERROR", err.Error())
			return
		}
		for _, raw := range recent {
			e, err := events.Decode(raw)
			if err != nil {
				s.log.Warn("skip undecodable event", "id", raw.ID, "error", err)
				continue
			}
			if sc, ok := e.(*events.ScanCompleted); ok {
				resp.LastScans = append(resp.LastScans, sc)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := s.deps.Library.ListLibraries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	resp := listLibrariesResponse{Items: make([]libraryResponse, 0, len(libs)), Total: len(libs)}
	for _, lib := range libs {
		item := libraryResponse{ID: lib.ID, Name: lib.Name, Path: lib.Path, Type: string(lib.Kind)}
		for kind, n := range map[library.ItemKind]*int{
			library.ItemSeries:  &item.Series,
			library.ItemEpisode: &item.Episodes,
			library.ItemMovie:   &item.Movies,
		} {
			if *n, err = s.deps.Library.CountItems(lib.ID, kind); err != nil {
				writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
				return
			}
		}
		resp.Items = append(resp.Items, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scanLibrary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	var res any
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "full":
		res, err = s.deps.Scanner.Scan(r.Context(), id)
	case "quick":
		res, err = s.deps.Scanner.QuickScan(r.Context(), id)
	case "missing":
		res, err = s.deps.Scanner.ScanMissing(r.Context(), id)
	default:
		writeError(w, http.StatusBadRequest, "INVALID_MODE", fmt.Sprintf("unknown scan mode %q; use full, quick or missing", mode))
		return
	}
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Library not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SCAN_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) refreshAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Scanner.RefreshAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SCAN_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) scanAll(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Scanner.QuickScanAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SCAN_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getQueues(w http.ResponseWriter, r *http.Request) {
	resp, err := s.queueCounts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) queueCounts() (*queuesResponse, error) {
	images, err := s.deps.Queues.ImageCounts()
	if err != nil {
		return nil, err
	}
	thumbs, err := s.deps.Queues.ThumbnailCounts()
	if err != nil {
		return nil, err
	}
	return &queuesResponse{Images: images, Thumbnails: thumbs}, nil
}

func (s *Server) listUnmatched(w http.ResponseWriter, r *http.Request) {
	libs, err := s.deps.Library.ListLibraries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	if v := r.URL.Query().Get("library_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
			return
		}
		lib, err := s.deps.Library.GetLibrary(id)
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Library not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		libs = []*library.Library{lib}
	}

	resp := listUnmatchedResponse{Items: []unmatchedResponse{}}
	for _, lib := range libs {
		records, err := s.deps.Library.ListUnmatched(lib.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
			return
		}
		for _, u := range records {
			resp.Items = append(resp.Items, unmatchedResponse{
				ID:             u.ID,
				LibraryID:      u.LibraryID,
				SeriesID:       u.SeriesID,
				FolderName:     u.FolderName,
				AttemptedTitle: u.AttemptedTitle,
				AttemptedYear:  u.AttemptedYear,
				FailureReason:  u.FailureReason,
				AttemptCount:   u.AttemptCount,
				LastAttemptAt:  u.LastAttemptAt,
			})
		}
	}
	resp.Total = len(resp.Items)
	writeJSON(w, http.StatusOK, resp)
}
