package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Error kinds surfaced to callers. Errors returned by this module wrap exactly
// one of them, so callers can test with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrKindMismatch         = errors.New("playlist kind mismatch")
	ErrOrderingConflict     = errors.New("ordering conflict")
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

var kinds = []error{
	ErrNotFound,
	ErrReferentialIntegrity,
	ErrKindMismatch,
	ErrOrderingConflict,
	ErrStorageUnavailable,
}

// Kind returns the sentinel err wraps, or nil when it wraps none of them.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify maps driver errors onto the module's error kinds.
// Already classified errors and context errors are returned unchanged.
func Classify(err error) error {
	if err == nil || Kind(err) != nil {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: %w", ErrReferentialIntegrity, err)
	case sqlite3.SQLITE_BUSY,
		sqlite3.SQLITE_LOCKED,
		sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_CANTOPEN,
		sqlite3.SQLITE_FULL,
		sqlite3.SQLITE_READONLY,
		sqlite3.SQLITE_CORRUPT,
		sqlite3.SQLITE_NOTADB:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
