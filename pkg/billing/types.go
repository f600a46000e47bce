package billing

import (
	"errors"
	"time"
)

// Plan identifies a subscription plan
type Plan string

const (
	PlanFree      Plan = "free"
	PlanProMonth  Plan = "pro_monthly"
	PlanProAnnual Plan = "pro_annual"
)

// ValidPlan reports whether p is a known plan
func ValidPlan(p Plan) bool {
	switch p {
	case PlanFree, PlanProMonth, PlanProAnnual:
		return true
	}
	return false
}

// PeriodLength returns the billing period for a plan
func (p Plan) PeriodLength() time.Duration {
	if p == PlanProAnnual {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	// SubscriptionStatusNone is the state of an account that never
	// subscribed
	SubscriptionStatusNone     SubscriptionStatus = "none"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is a user's plan record
type Subscription struct {
	UserID           string             `json:"user_id"`
	Plan             Plan               `json:"plan"`
	Status           SubscriptionStatus `json:"status"`
	ExternalRef      string             `json:"external_ref,omitempty"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

var (
	// ErrUnknownPlan is returned for plan values outside the catalog
	ErrUnknownPlan = errors.New("unknown plan")

	// ErrNoSubscription is returned when canceling an account that
	// has no active subscription
	ErrNoSubscription = errors.New("no active subscription")
)

// PlanPricing defines the price of one plan
type PlanPricing struct {
	Plan           Plan
	BasePriceCents int64
}

// Pricing returns the plan catalog
func Pricing() map[Plan]PlanPricing {
	return map[Plan]PlanPricing{
		PlanFree:      {Plan: PlanFree, BasePriceCents: 0},
		PlanProMonth:  {Plan: PlanProMonth, BasePriceCents: 999},
		PlanProAnnual: {Plan: PlanProAnnual, BasePriceCents: 9990},
	}
}
