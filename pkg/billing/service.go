package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// RoleUpdater changes a profile's role when a subscription changes
// tier
type RoleUpdater interface {
	UpdateRole(ctx context.Context, id string, role auth.Role) error
	GetProfile(ctx context.Context, id string) (*auth.User, error)
}

// Service manages subscriptions and keeps profile roles in step with
// them
type Service struct {
	db       *sql.DB
	profiles RoleUpdater
	logger   *observability.Logger
	now      func() time.Time
}

// NewService creates the billing service
func NewService(db *sql.DB, profiles RoleUpdater, logger *observability.Logger) *Service {
	return &Service{
		db:       db,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

const subscriptionColumns = "user_id, plan, status, external_ref, current_period_end, created_at, updated_at"

func (s *Service) scanSubscription(row *sql.Row) (*Subscription, error) {
	sub := &Subscription{}
	var externalRef sql.NullString
	var periodEnd sql.NullTime
	err := row.Scan(&sub.UserID, &sub.Plan, &sub.Status, &externalRef,
		&periodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.ExternalRef = externalRef.String
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return sub, nil
}

// Get returns the user's subscription. Accounts that never
// subscribed read as the free plan with status none.
func (s *Service) Get(ctx context.Context, userID string) (*Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE user_id = $1", userID)
	sub, err := s.scanSubscription(row)
	if err == sql.ErrNoRows {
		return &Subscription{
			UserID: userID,
			Plan:   PlanFree,
			Status: SubscriptionStatusNone,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// Subscribe puts the user on a pro plan and upgrades their role.
// externalRef identifies the payment provider's subscription object.
func (s *Service) Subscribe(ctx context.Context, userID string, plan Plan, externalRef string) (*Subscription, error) {
	if !ValidPlan(plan) || plan == PlanFree {
		return nil, ErrUnknownPlan
	}

	periodEnd := s.now().Add(plan.PeriodLength())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, plan, status, external_ref, current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = $2,
			status = $3,
			external_ref = $4,
			current_period_end = $5,
			updated_at = NOW()`,
		userID, plan, SubscriptionStatusActive, externalRef, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	// Admin roles already carry pro entitlements; only free users move
	if err := s.upgradeRole(ctx, userID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *Service) upgradeRole(ctx context.Context, userID string) error {
	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for upgrade: %w", err)
	}
	if user.Role != auth.RoleFreeUser {
		return nil
	}
	if err := s.profiles.UpdateRole(ctx, userID, auth.RoleProUser); err != nil {
		return fmt.Errorf("failed to upgrade role: %w", err)
	}
	return nil
}

// Cancel marks the subscription canceled and drops a pro_user role
// back to the free tier. Admin roles are never downgraded by billing.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE user_id = $1 AND status = $3`,
		userID, SubscriptionStatusCanceled, SubscriptionStatusActive)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNoSubscription
	}

	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for downgrade: %w", err)
	}
	if user.Role == auth.RoleProUser {
		if err := s.profiles.UpdateRole(ctx, userID, auth.RoleFreeUser); err != nil {
			return fmt.Errorf("failed to downgrade role: %w", err)
		}
	}
	return nil
}

// MarkPastDue flags a subscription whose renewal payment failed.
// Entitlements are kept until cancellation.
func (s *Service) MarkPastDue(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $2, updated_at = NOW()
		WHERE user_id = $1 AND status = $3`,
		userID, SubscriptionStatusPastDue, SubscriptionStatusActive)
	if err != nil {
		return fmt.Errorf("failed to mark subscription past due: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNoSubscription
	}
	return nil
}

// WebhookEvent is a payment provider notification
type WebhookEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Plan   Plan   `json:"plan,omitempty"`
	Ref    string `json:"ref,omitempty"`
}

// HandleWebhook applies a payment provider event to the subscription
// state
func (s *Service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	switch event.Type {
	case "subscription.created", "subscription.renewed":
		_, err := s.Subscribe(ctx, event.UserID, event.Plan, event.Ref)
		return err
	case "subscription.canceled":
		return s.Cancel(ctx, event.UserID)
	case "payment.failed":
		return s.MarkPastDue(ctx, event.UserID)
	default:
		s.logger.WithField("event_type", event.Type).Debug("ignoring unhandled webhook event")
		return nil
	}
}
