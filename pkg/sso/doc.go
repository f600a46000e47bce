// Package sso implements federated sign-in with external identity
// providers.
//
// # Overview
//
// Two providers are supported: Google (OpenID Connect with ID token
// verification) and GitHub (plain OAuth2 with a userinfo fetch). Both
// produce an auth.ExternalPrincipal, which the session manager maps
// onto a stored profile. Providers carry no role information; a brand
// new identity always lands on the free tier.
//
// CSRF protection uses a random state parameter mirrored in a
// short-lived cookie, checked on the callback.
//
// # Related Packages
//
//   - pkg/session: turns principals into signed-in sessions
//   - pkg/api: mounts the login and callback routes
package sso
