package marketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

// ErrPermissionDenied is returned when the caller's role cannot run
// marketing campaigns
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidCampaign is returned when campaign fields fail validation
var ErrInvalidCampaign = errors.New("invalid campaign")

// Service enforces the marketing permission over the store
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService creates the marketing service
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create adds a campaign. Requires the marketing permission.
func (s *Service) Create(ctx context.Context, caller *auth.User, name, slug string, startsAt, endsAt time.Time) (*Campaign, error) {
	if !caller.Permissions().CanRunMarketing {
		return nil, ErrPermissionDenied
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCampaign)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrInvalidCampaign)
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("%w: must end after it starts", ErrInvalidCampaign)
	}

	c := &Campaign{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		CreatedBy: caller.ID,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns campaigns. Requires the marketing permission.
func (s *Service) List(ctx context.Context, caller *auth.User, limit, offset int) ([]*Campaign, error) {
	if !caller.Permissions().CanRunMarketing {
		return nil, ErrPermissionDenied
	}
	return s.store.List(ctx, limit, offset)
}

// SetActive switches a campaign on or off. Requires the marketing
// permission.
func (s *Service) SetActive(ctx context.Context, caller *auth.User, id string, active bool) error {
	if !caller.Permissions().CanRunMarketing {
		return ErrPermissionDenied
	}
	return s.store.SetActive(ctx, id, active)
}

// Delete removes a campaign. Requires the marketing permission.
func (s *Service) Delete(ctx context.Context, caller *auth.User, id string) error {
	if !caller.Permissions().CanRunMarketing {
		return ErrPermissionDenied
	}
	return s.store.Delete(ctx, id)
}

// Active returns the campaigns currently running. Open to any caller
// so banners can render on public pages.
func (s *Service) Active(ctx context.Context) ([]*Campaign, error) {
	return s.store.ListActive(ctx, s.now())
}
