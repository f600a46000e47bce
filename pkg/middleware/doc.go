// Package middleware provides the HTTP request pipeline: session
// resolution, route authorization, quota enforcement and rate
// limiting.
//
// # Middleware Ordering
//
// The guard reads the identity that SessionMiddleware attaches, and
// the quota middleware reads the same identity. Required order, outer
// to inner:
//
//  1. SessionMiddleware - resolves the token and attaches the identity
//  2. GuardMiddleware - allows or redirects the navigation
//  3. RateLimitMiddleware - per-user and per-IP limits
//  4. QuotaMiddleware - on upload routes only
//
// # Route Authorization
//
// Evaluate is a pure function over (path, identity). Public routes
// pass without a session. Everything else needs one; requests without
// an identity are redirected to the login page. Paths under
// /admin/super require the super_admin role itself, paths under
// /admin accept the admin roles or the per-account admin flag, and
// all remaining paths accept any session. Denials are silent
// see-other redirects, never a visible forbidden page.
//
// # Related Packages
//
//   - pkg/session: produces the identities the guard consults
//   - pkg/auth: the role predicates behind the role checks
package middleware
