package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const sessionColumns = "token_hash, user_id, email, role, is_admin, created_at, expires_at, refreshed_at"

// Store persists sessions in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore creates a session store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new session row
func (s *Store) Create(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.TokenHash, rec.UserID, rec.Email, rec.Role, rec.IsAdmin,
		rec.CreatedAt, rec.ExpiresAt, rec.RefreshedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get returns the live session for a token hash. Expired sessions
// read as not found.
func (s *Store) Get(ctx context.Context, tokenHash string) (*Record, error) {
	rec := &Record{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token_hash = $1 AND expires_at > NOW()`,
		tokenHash,
	).Scan(&rec.TokenHash, &rec.UserID, &rec.Email, &rec.Role, &rec.IsAdmin,
		&rec.CreatedAt, &rec.ExpiresAt, &rec.RefreshedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return rec, nil
}

// UpdateIdentity writes a freshly read role and admin flag back to
// the session row
func (s *Store) UpdateIdentity(ctx context.Context, tokenHash string, role string, isAdmin bool, refreshedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET role = $2, is_admin = $3, refreshed_at = $4
		WHERE token_hash = $1`,
		tokenHash, role, isAdmin, refreshedAt)
	if err != nil {
		return fmt.Errorf("failed to update session identity: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *Store) Delete(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteForUser removes every session belonging to a user
func (s *Store) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// DeleteExpired removes expired sessions
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

// CountActive returns the number of live sessions
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE expires_at > NOW()",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
