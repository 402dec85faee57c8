package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	v1 "github.com/vmunix/mediarr/internal/api/v1"
	"github.com/vmunix/mediarr/internal/queue"
	"github.com/vmunix/mediarr/internal/scanner"
)

// Client wraps HTTP calls to the mediarr daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new mediarr API client. Scans run synchronously
// on the server, so the timeout is generous.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Hour,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeResponse(resp, result)
}

func (c *Client) post(path string, result any) error {
	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeResponse(resp, result)
}

func decodeResponse(resp *http.Response, result any) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error %d: %s (%s)", resp.StatusCode, apiErr.Error, apiErr.Code)
		}
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// API response types (mirror server types)

type LibraryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Series   int    `json:"series"`
	Episodes int    `json:"episodes"`
	Movies   int    `json:"movies"`
}

type ListLibrariesResponse struct {
	Items []LibraryResponse `json:"items"`
	Total int               `json:"total"`
}

type QueuesResponse struct {
	Images     queue.Counts `json:"images"`
	Thumbnails queue.Counts `json:"thumbnails"`
}

type UnmatchedResponse struct {
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

type ListUnmatchedResponse struct {
	Items []UnmatchedResponse `json:"items"`
	Total int                 `json:"total"`
}

// Status returns the daemon status.
func (c *Client) Status() (*v1.StatusResponse, error) {
	var resp v1.StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Libraries lists the configured libraries with item counts.
func (c *Client) Libraries() (*ListLibrariesResponse, error) {
	var resp ListLibrariesResponse
	if err := c.get("/api/v1/libraries", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scan runs a full scan of one library.
func (c *Client) Scan(libraryID int64) (*scanner.Result, error) {
	var resp scanner.Result
	if err := c.post(scanPath(libraryID, "full"), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QuickScan runs a quick scan of one library.
func (c *Client) QuickScan(libraryID int64) (*scanner.QuickResult, error) {
	var resp scanner.QuickResult
	if err := c.post(scanPath(libraryID, "quick"), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanMissing fills in metadata for items that have none.
func (c *Client) ScanMissing(libraryID int64) (*scanner.MissingResult, error) {
	var resp scanner.MissingResult
	if err := c.post(scanPath(libraryID, "missing"), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func scanPath(libraryID int64, mode string) string {
	return "/api/v1/libraries/" + strconv.FormatInt(libraryID, 10) + "/scan?mode=" + url.QueryEscape(mode)
}

// ScanAll quick scans every library.
func (c *Client) ScanAll() (*scanner.QuickResult, error) {
	var resp scanner.QuickResult
	if err := c.post("/api/v1/scan", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh clears and rescans every library.
func (c *Client) Refresh() (*scanner.Result, error) {
	var resp scanner.Result
	if err := c.post("/api/v1/refresh", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Queues returns pending and failed counts for both queues.
func (c *Client) Queues() (*QueuesResponse, error) {
	var resp QueuesResponse
	if err := c.get("/api/v1/queues", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unmatched lists unmatched series, optionally for one library.
func (c *Client) Unmatched(libraryID int64) (*ListUnmatchedResponse, error) {
	path := "/api/v1/unmatched"
	if libraryID > 0 {
		path += "?library_id=" + strconv.FormatInt(libraryID, 10)
	}
	var resp ListUnmatchedResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
