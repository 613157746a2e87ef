package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bioskin/inventory/internal/model"
)

// ErrUserExists is returned when creating a user whose username is taken.
var ErrUserExists = errors.New("username already exists")

const userColumns = `id, username, password_hash, role, created_at`

// CreateUser creates a new user with an already hashed password.
func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash, role string) (*model.User, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating user %q: %w", username, ErrUserExists)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if it does not exist.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUserWhere(ctx, db, `id = ?`, id)
}

// GetUserByUsername returns a user by username, or nil if it does not exist.
// Usernames match exactly.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	return getUserWhere(ctx, db, `username = ?`, username)
}

func getUserWhere(ctx context.Context, db *sql.DB, cond string, arg any) (*model.User, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPassword replaces a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	if err := checkDB(db); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
