package library

import (
	"database/sql"
	"errors"
	"strings"
)

// Store errors, matched with errors.Is. The API answers ErrNotFound with 404.
var (
	// ErrNotFound is returned when no library, series or item has the
	// requested ID or path.
	ErrNotFound = errors.New("library: no such record")

	// ErrDuplicate is returned when a library name or path, or an item's
	// file path, is already taken.
	ErrDuplicate = errors.New("library: already exists")

	// ErrConstraint is returned when a write references a missing parent
	// (an item whose series or library was removed) or stores a value the
	// schema rejects, such as an unknown library kind.
	ErrConstraint = errors.New("library: rejected by schema")
)

// mapSQLiteError converts SQLite errors to the store errors.
// modernc.org/sqlite reports constraint failures only in the message.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return ErrConstraint
	}
	return err
}
