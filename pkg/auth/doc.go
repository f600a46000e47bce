// Package auth provides the role taxonomy and entitlement resolver for PDF-GPT.
//
// # Overview
//
// This package defines the four account roles, the static permission
// table keyed by role, and the pure functions that derive per-request
// capabilities from a role plus live usage counters. It also provides
// the opaque session token generator used by pkg/session.
//
// # Roles
//
//	RoleSuperAdmin - full platform control, all quotas unlimited
//	RoleAdmin      - staff: shop uploads, promotions, marketing
//	RoleProUser    - paid tier: AI features, 1000 PDF ceiling
//	RoleFreeUser   - default tier: 10 PDFs, 10 uploads per month
//
// The permission table is a process-wide constant. PermissionsFor is a
// total lookup; an unrecognized role falls back to the free tier set.
//
// # Entitlement derivation
//
//	features := auth.DeriveFeatures(user.Role, &auth.UsageSnapshot{
//		PDFCount:       12,
//		MonthlyUploads: 3,
//	})
//	if !features.CanUpload {
//		// over quota
//	}
//
// DeriveFeatures is pure and side-effect free: it never errors, never
// caches, and produces identical output for identical input.
//
// # Admin access
//
// Admin-ness is a boolean OR of three independent signals (the two
// admin roles and the explicit IsAdmin profile flag), not a role
// subtype. A Pro user on staff keeps the pro_user role for billing
// while the flag grants admin screens.
//
// # Related Packages
//
//   - pkg/session: projects profile records into request identities
//   - pkg/middleware: route authorization guard consuming the predicates
//   - pkg/usage: produces the UsageSnapshot counters
package auth
