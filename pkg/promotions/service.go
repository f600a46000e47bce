package promotions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
)

// ErrPermissionDenied is returned when the caller's role cannot
// manage promotions
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidPromotion is returned when promotion fields fail validation
var ErrInvalidPromotion = errors.New("invalid promotion")

// Service enforces the promotion permission over the store
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService creates the promotions service
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create adds a promotion. Requires the promotion permission.
func (s *Service) Create(ctx context.Context, caller *auth.User, code, description string, discountPercent, maxUses int, startsAt, endsAt time.Time) (*Promotion, error) {
	if !caller.Permissions().CanCreatePromotions {
		return nil, ErrPermissionDenied
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidPromotion)
	}
	if discountPercent < 1 || discountPercent > 100 {
		return nil, fmt.Errorf("%w: discount percent must be between 1 and 100", ErrInvalidPromotion)
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("%w: must end after it starts", ErrInvalidPromotion)
	}

	p := &Promotion{
		ID:              uuid.NewString(),
		Code:            code,
		Description:     description,
		DiscountPercent: discountPercent,
		MaxUses:         maxUses,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		CreatedBy:       caller.ID,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns promotions. Requires the promotion permission.
func (s *Service) List(ctx context.Context, caller *auth.User, limit, offset int) ([]*Promotion, error) {
	if !caller.Permissions().CanCreatePromotions {
		return nil, ErrPermissionDenied
	}
	return s.store.List(ctx, limit, offset)
}

// Delete removes a promotion. Requires the promotion permission.
func (s *Service) Delete(ctx context.Context, caller *auth.User, id string) error {
	if !caller.Permissions().CanCreatePromotions {
		return ErrPermissionDenied
	}
	return s.store.Delete(ctx, id)
}

// Redeem applies a code for the calling user. Any signed-in tier may
// redeem.
func (s *Service) Redeem(ctx context.Context, userID, code string) (*Promotion, error) {
	return s.store.Redeem(ctx, code, userID, s.now())
}
