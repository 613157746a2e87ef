package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// schema is the baseline schema. Columns added to items after the first
// release are not listed here; see itemColumns.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    sku         TEXT UNIQUE,
    description TEXT,
    cost_price  REAL DEFAULT 0.0,
    quantity    INTEGER DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_name ON items(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_items_quantity ON items(quantity);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// column is an items column introduced after the baseline schema.
type column struct {
	name string
	def  string
}

// itemColumns lists the additive items migrations, in the order they shipped.
// Append new columns at the end; never remove or reorder.
var itemColumns = []column{
	{"category", "TEXT"},
	{"storage", "TEXT"},
	{"variant", "TEXT"},
	{"status", "TEXT DEFAULT 'Normal'"},
}

// EnsureSchema creates all tables if they don't exist and adds any items
// columns missing from an older database file. A column that cannot be
// added is logged and skipped; startup continues without it.
func EnsureSchema(db *sql.DB) error {
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	existing, err := tableColumns(ctx, db, "items")
	if err != nil {
		return err
	}

	for _, c := range itemColumns {
		if existing[c.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE items ADD COLUMN %s %s", c.name, c.def)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Error().Err(err).Str("column", c.name).Msg("failed to add items column")
			continue
		}
		log.Info().Str("column", c.name).Msg("added items column")
	}

	return nil
}

// MissingColumns reports the additive items columns that are absent, e.g.
// because their migration failed at startup.
func MissingColumns(db *sql.DB) ([]string, error) {
	existing, err := tableColumns(context.Background(), db, "items")
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, c := range itemColumns {
		if !existing[c.name] {
			missing = append(missing, c.name)
		}
	}
	return missing, nil
}

// tableColumns returns the set of lower-cased column names of a table.
// SQLite column names are case-insensitive.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning %s column: %w", table, err)
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
