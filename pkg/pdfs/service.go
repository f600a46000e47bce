package pdfs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/storage"
	"github.com/BDeshi155/pdf-gpt/pkg/usage"
)

var pdfMagic = []byte("%PDF-")

// Service coordinates PDF metadata, blob content and usage counters
type Service struct {
	store   *Store
	blobs   storage.BlobStore
	usage   *usage.Store
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates the PDF service. metrics may be nil.
func NewService(store *Store, blobs storage.BlobStore, usageStore *usage.Store, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:   store,
		blobs:   blobs,
		usage:   usageStore,
		logger:  logger,
		metrics: metrics,
	}
}

// BlobKey returns the storage key for a user's PDF
func BlobKey(ownerID, pdfID string) string {
	return fmt.Sprintf("pdfs/%s/%s.pdf", ownerID, pdfID)
}

// Upload stores a new PDF for the owner, enforcing their quota. The
// content is validated to be a PDF by its magic header.
func (s *Service) Upload(ctx context.Context, owner *auth.User, title, filename string, content []byte) (*PDF, error) {
	if !bytes.HasPrefix(content, pdfMagic) {
		s.countUpload("rejected")
		return nil, ErrNotAPDF
	}

	snapshot, err := s.usage.Snapshot(ctx, owner.ID)
	if err != nil {
		s.countUpload("error")
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}
	features := auth.DeriveFeatures(owner.Role, snapshot)
	if !features.CanUpload {
		s.countUpload("quota_denied")
		if s.metrics != nil {
			s.metrics.QuotaDenialsTotal.WithLabelValues("upload").Inc()
		}
		return nil, ErrQuotaExceeded
	}

	pdf := &PDF{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		Title:     title,
		Filename:  filename,
		SizeBytes: int64(len(content)),
	}
	if pdf.Title == "" {
		pdf.Title = filename
	}
	pdf.BlobKey = BlobKey(owner.ID, pdf.ID)

	if err := s.blobs.Put(ctx, pdf.BlobKey, bytes.NewReader(content), "application/pdf"); err != nil {
		s.countUpload("error")
		return nil, fmt.Errorf("failed to store pdf content: %w", err)
	}

	if err := s.store.Create(ctx, pdf); err != nil {
		if delErr := s.blobs.Delete(ctx, pdf.BlobKey); delErr != nil {
			s.logger.WithError(delErr).WithField("blob_key", pdf.BlobKey).
				Warn("failed to clean up blob after create failure")
		}
		s.countUpload("error")
		return nil, err
	}

	if err := s.usage.RecordUpload(ctx, owner.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", owner.ID).
			Error("failed to record upload against usage counters")
	}

	s.countUpload("success")
	return pdf, nil
}

// Get returns the metadata for one of the owner's PDFs
func (s *Service) Get(ctx context.Context, ownerID, id string) (*PDF, error) {
	return s.store.Get(ctx, ownerID, id)
}

// Download returns the metadata and a reader over the PDF content.
// The caller must close the reader.
func (s *Service) Download(ctx context.Context, ownerID, id string) (*PDF, io.ReadCloser, error) {
	pdf, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.blobs.Get(ctx, pdf.BlobKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read pdf content: %w", err)
	}
	return pdf, content, nil
}

// List returns a page of the owner's PDFs
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]*PDF, int64, error) {
	return s.store.List(ctx, ownerID, limit, offset)
}

// Search matches the owner's PDFs by title or filename
func (s *Service) Search(ctx context.Context, ownerID, query string, limit int) ([]*PDF, error) {
	return s.store.Search(ctx, ownerID, query, limit)
}

// Rename changes a PDF's title
func (s *Service) Rename(ctx context.Context, ownerID, id, title string) error {
	return s.store.UpdateTitle(ctx, ownerID, id, title)
}

// Delete removes a PDF and its content, releasing one slot of the
// owner's PDF quota
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	pdf, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, pdf.BlobKey); err != nil {
		s.logger.WithError(err).WithField("blob_key", pdf.BlobKey).
			Warn("failed to delete pdf blob")
	}

	if err := s.usage.RecordDelete(ctx, ownerID); err != nil {
		s.logger.WithError(err).WithField("user_id", ownerID).
			Error("failed to record delete against usage counters")
	}
	return nil
}

func (s *Service) countUpload(status string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(status).Inc()
	}
}
