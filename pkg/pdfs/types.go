package pdfs

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a PDF does not exist or belongs to
	// another user
	ErrNotFound = errors.New("pdf not found")

	// ErrQuotaExceeded is returned when an upload would pass the
	// owner's quota
	ErrQuotaExceeded = errors.New("upload quota exceeded")

	// ErrNotAPDF is returned when the uploaded bytes are not a PDF
	// document
	ErrNotAPDF = errors.New("file is not a PDF")
)

// PDF is a stored document record. The bytes live in blob storage
// under BlobKey.
type PDF struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	BlobKey   string    `json:"-"`
	SizeBytes int64     `json:"size_bytes"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
