// Package storage provides pluggable blob storage backends for PDF content.
//
// # Overview
//
// PDF metadata lives in PostgreSQL; the file bytes are written through
// the BlobStore interface. Two backends are provided:
//
//   - FilesystemStore: files under a root directory, for local
//     development and single-node deployments
//   - S3Store: S3-compatible object storage (AWS S3, MinIO)
//
// # Configuration
//
//	cfg := storage.DefaultConfig()
//	cfg.Type = "s3"
//	cfg.S3Bucket = "pdfgpt-files"
//	cfg.S3Region = "us-east-1"
//
//	store, err := storage.NewBlobStore(cfg)
//
// # Keys
//
// Blob keys are hierarchical strings, by convention
// "pdfs/<owner_id>/<pdf_id>.pdf" for user documents and
// "shop/<pdf_id>.pdf" for shop inventory.
package storage
