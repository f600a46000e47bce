// Package api provides the HTTP REST API server.
//
// # Overview
//
// The server is built on gorilla/mux and organized into domain-specific
// handler groups, each with a RegisterRoutes method:
//
//   - AuthHandlers: sign-up, sign-in, sign-out and the identity
//     provider redirect flow
//   - MeHandlers: the caller's profile, usage counters and derived
//     feature flags
//   - PDFHandlers: the per-user PDF library (upload, list, search,
//     download, rename, delete)
//   - ShopHandlers: the curated PDF catalog and its admin management
//   - PromotionHandlers: promotion management and code redemption
//   - MarketingHandlers: campaign management and the public active
//     campaign listing
//   - BillingHandlers: subscription state and the payment provider
//     webhook
//   - AdminHandlers: user listings, role changes, the admin flag and
//     the audit trail
//
// # Request Pipeline
//
// NewServer installs the middleware chain from pkg/middleware: the
// session resolver runs first, then the route guard, then rate
// limiting. The upload quota check is attached only to the PDF upload
// route. Handlers re-check the specific permission through the service
// layer, so the guard is a navigation gate rather than the only line
// of defense.
//
// # Related Packages
//
//   - pkg/middleware: the pipeline the server installs
//   - pkg/session: session issuance and resolution behind AuthHandlers
//   - pkg/sso: the identity providers behind the redirect flow
package api
