// Package profiles persists user profiles and federated identity mappings.
//
// # Overview
//
// A profile is the stored account record: email, display name, role,
// and the orthogonal admin flag. Federated identities (Google, GitHub)
// map to profiles through the identities table, so one account can
// carry several sign-in methods.
//
// First federated sign-in provisions a profile just in time:
//
//	user, created, err := store.EnsureProfile(ctx, principal)
//
// New profiles always start as free_user with the admin flag off.
//
// Credentials sign-in verifies a bcrypt password hash:
//
//	user, err := store.VerifyCredentials(ctx, email, password)
//
// Reads by ID go through a short-TTL LRU cache; role and flag updates
// invalidate it so authorization picks up changes quickly.
//
// # Related Packages
//
//   - pkg/auth: Role and permission definitions
//   - pkg/session: Builds session identities from profiles
package profiles
