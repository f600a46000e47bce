// Package storage provides blob storage backends for PDF content.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blob not found")

// BlobStore stores and retrieves PDF content by key. Metadata lives in
// PostgreSQL; only file bytes go through this interface.
type BlobStore interface {
	// Put uploads content under the given key, overwriting any
	// existing blob.
	Put(ctx context.Context, key string, content io.Reader, contentType string) error

	// Get returns a reader for the blob. The caller must close it.
	// Returns ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether a blob is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}

// Config for the blob storage backend
type Config struct {
	Type string // "filesystem" or "s3"

	// Filesystem config
	FilesystemRoot string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:           "filesystem",
		FilesystemRoot: "/tmp/pdfgpt",
		S3Region:       "us-east-1",
	}
}

// NewBlobStore constructs the backend named by cfg.Type
func NewBlobStore(cfg Config) (BlobStore, error) {
	switch cfg.Type {
	case "filesystem":
		return NewFilesystemStore(cfg.FilesystemRoot)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, errors.New("unknown storage type: " + cfg.Type)
	}
}
