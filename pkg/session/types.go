package session

import (
	"errors"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

var (
	// ErrNotFound is returned when no live session matches the token
	ErrNotFound = errors.New("session not found")

	// ErrInvalidToken is returned for malformed tokens
	ErrInvalidToken = errors.New("invalid session token")

	// ErrStale is returned when the profile store is unreachable and
	// the cached identity has aged past the staleness window
	ErrStale = errors.New("session identity is stale")
)

// Identity is the authenticated view of a request's user. Role and
// IsAdmin are snapshots taken at sign-in and refreshed periodically
// from the profile store.
type Identity struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        auth.Role `json:"role"`
	IsAdmin     bool      `json:"is_admin"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Record is a stored session row. Only the SHA256 hash of the token
// is persisted.
type Record struct {
	TokenHash   string
	UserID      string
	Email       string
	Role        auth.Role
	IsAdmin     bool
	CreatedAt   time.Time
	ExpiresAt   time.Time
	RefreshedAt time.Time
}

// Identity returns the cached identity carried by the record
func (r *Record) Identity() *Identity {
	return &Identity{
		UserID:      r.UserID,
		Email:       r.Email,
		Role:        r.Role,
		IsAdmin:     r.IsAdmin,
		RefreshedAt: r.RefreshedAt,
	}
}
