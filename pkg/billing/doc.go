// Package billing manages subscriptions and the role transitions
// they imply.
//
// # Overview
//
// A subscription puts an account on a plan (pro_monthly, pro_annual)
// with a status of active, past_due or canceled; accounts that never
// subscribed read as the free plan with status none. Subscribing
// upgrades a free_user role to pro_user; cancellation reverses it.
// Admin and super admin roles already carry pro entitlements and are
// never touched by billing. Payment provider notifications arrive as
// webhook events and map onto the same transitions.
//
// # Related Packages
//
//   - pkg/profiles: the role updates billing drives
//   - pkg/auth: role definitions and entitlements
package billing
