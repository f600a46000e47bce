package shop

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/storage"
)

// Service enforces shop permissions over the item store
type Service struct {
	store  *Store
	blobs  storage.BlobStore
	logger *observability.Logger
}

// NewService creates the shop service
func NewService(store *Store, blobs storage.BlobStore, logger *observability.Logger) *Service {
	return &Service{store: store, blobs: blobs, logger: logger}
}

// BlobKey returns the storage key for a shop item
func BlobKey(itemID string) string {
	return fmt.Sprintf("shop/%s.pdf", itemID)
}

// Browse returns published items. The shop catalog is visible to
// every signed-in tier.
func (s *Service) Browse(ctx context.Context, limit, offset int) ([]*Item, error) {
	return s.store.ListPublished(ctx, limit, offset)
}

// Get returns a published item. Unpublished drafts read as not found
// unless the caller can manage the shop.
func (s *Service) Get(ctx context.Context, caller *auth.User, id string) (*Item, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Published && !caller.Permissions().CanManagePDFShop {
		return nil, ErrNotFound
	}
	return item, nil
}

// Upload adds a new draft item. Requires the shop upload permission.
func (s *Service) Upload(ctx context.Context, caller *auth.User, title, description string, priceCents int, content []byte) (*Item, error) {
	if !caller.Permissions().CanUploadToPDFShop {
		return nil, ErrPermissionDenied
	}

	item := &Item{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		PriceCents:  priceCents,
		UploadedBy:  caller.ID,
	}
	item.BlobKey = BlobKey(item.ID)

	if err := s.blobs.Put(ctx, item.BlobKey, bytes.NewReader(content), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store shop item content: %w", err)
	}
	if err := s.store.Create(ctx, item); err != nil {
		if delErr := s.blobs.Delete(ctx, item.BlobKey); delErr != nil {
			s.logger.WithError(delErr).WithField("blob_key", item.BlobKey).
				Warn("failed to clean up blob after create failure")
		}
		return nil, err
	}
	return item, nil
}

// Download returns a reader over a published item's content. Premium
// items require a pro-level account.
func (s *Service) Download(ctx context.Context, caller *auth.User, id string) (*Item, io.ReadCloser, error) {
	item, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}

	if item.PriceCents > 0 && !auth.IsProLevel(caller.Role) {
		return nil, nil, ErrProRequired
	}

	content, err := s.blobs.Get(ctx, item.BlobKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read shop item content: %w", err)
	}
	return item, content, nil
}

// ListAll returns the full catalog including drafts. Requires the
// shop management permission.
func (s *Service) ListAll(ctx context.Context, caller *auth.User, limit, offset int) ([]*Item, error) {
	if !caller.Permissions().CanManagePDFShop {
		return nil, ErrPermissionDenied
	}
	return s.store.ListAll(ctx, limit, offset)
}

// Update changes an item's listing. Requires the shop management
// permission.
func (s *Service) Update(ctx context.Context, caller *auth.User, id, title, description string, priceCents int) error {
	if !caller.Permissions().CanManagePDFShop {
		return ErrPermissionDenied
	}
	return s.store.Update(ctx, id, title, description, priceCents)
}

// SetPublished publishes or unpublishes an item. Requires the shop
// management permission.
func (s *Service) SetPublished(ctx context.Context, caller *auth.User, id string, published bool) error {
	if !caller.Permissions().CanManagePDFShop {
		return ErrPermissionDenied
	}
	return s.store.SetPublished(ctx, id, published)
}

// Delete removes an item and its content. Requires the shop
// management permission.
func (s *Service) Delete(ctx context.Context, caller *auth.User, id string) error {
	if !caller.Permissions().CanManagePDFShop {
		return ErrPermissionDenied
	}

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, item.BlobKey); err != nil {
		s.logger.WithError(err).WithField("blob_key", item.BlobKey).
			Warn("failed to delete shop item blob")
	}
	return nil
}
