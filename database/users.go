package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"apotek/model"
)

const userColumns = `id, email, display_name, password_hash, created_at`

func InsertUser(ctx context.Context, db DBTX, u *model.User) error {
	const q = `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :display_name, :password_hash, :created_at)`
	if _, err := db.NamedExecContext(ctx, q, u); err != nil {
		return fmt.Errorf("failed to insert user %s: %w", u.Email, err)
	}
	return nil
}

// GetUserByEmail returns nil without error when no row matches.
func GetUserByEmail(ctx context.Context, db DBTX, email string) (*model.User, error) {
	var u model.User
	err := db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", email, err)
	}
	return &u, nil
}

// GetUserByID returns nil without error when no row matches.
func GetUserByID(ctx context.Context, db DBTX, id string) (*model.User, error) {
	var u model.User
	err := db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &u, nil
}

func RevokeSession(ctx context.Context, db DBTX, sessionID string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_sessions (session_id, revoked_at) VALUES (?, ?)`, sessionID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke session %s: %w", sessionID, err)
	}
	return nil
}

func IsSessionRevoked(ctx context.Context, db DBTX, sessionID string) (bool, error) {
	var n int
	err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM revoked_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}
	return n > 0, nil
}
