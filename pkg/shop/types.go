package shop

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a shop item does not exist
	ErrNotFound = errors.New("shop item not found")

	// ErrPermissionDenied is returned when the caller's role lacks the
	// required shop permission
	ErrPermissionDenied = errors.New("permission denied")

	// ErrProRequired is returned when a free user downloads a premium
	// item
	ErrProRequired = errors.New("premium item requires a pro subscription")
)

// Item is a curated PDF offered in the shop. Premium items have a
// non-zero price and are limited to pro-level accounts.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	BlobKey     string    `json:"-"`
	PriceCents  int       `json:"price_cents"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
