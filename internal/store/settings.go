package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

const jwtSecretKey = "jwt_secret"

// GetJWTSecret returns the session signing secret, generating and storing
// one on first use.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	return getOrCreateSetting(ctx, db, jwtSecretKey, func() (string, error) {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		return hex.EncodeToString(buf), nil
	})
}

// getOrCreateSetting reads a setting, storing the generated value first if
// the key is absent. INSERT OR IGNORE followed by a read keeps an existing
// value intact.
func getOrCreateSetting(ctx context.Context, db *sql.DB, key string, generate func() (string, error)) (string, error) {
	if err := checkDB(db); err != nil {
		return "", err
	}

	candidate, err := generate()
	if err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, candidate,
	); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var value string
	if err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value); err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}
	return value, nil
}
