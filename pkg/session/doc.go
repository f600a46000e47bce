// Package session manages sign-in sessions and their identity
// snapshots.
//
// # Overview
//
// A session is created at sign-in, either from an identity provider
// principal or from verified email/password credentials. Both paths
// converge on the same profile lookup; the first federated sign-in
// for an unknown identity provisions a free-tier profile.
//
// The session row stores a snapshot of the user's role and admin
// flag alongside the hashed token. Resolve serves that snapshot while
// it is younger than the refresh interval, then re-reads the profile
// so role changes and revoked admin flags take effect on live
// sessions. When the profile store is unreachable the snapshot is
// served only within a bounded staleness window; past it the session
// fails closed rather than trusting stale privileges.
//
// # Related Packages
//
//   - pkg/auth: token generation and role definitions
//   - pkg/profiles: the profile store behind refreshes
//   - pkg/middleware: attaches resolved identities to requests
package session
