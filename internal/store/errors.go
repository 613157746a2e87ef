package store

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotInitialized is returned when the database handle is nil.
	ErrNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when an update or delete target does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSKU is returned when a write would give two items the same SKU.
	ErrDuplicateSKU = errors.New("duplicate sku")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return strings.Contains(se.Error(), "UNIQUE")
		}
		return false
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func checkDB(db *sql.DB) error {
	if db == nil {
		return ErrNotInitialized
	}
	return nil
}
