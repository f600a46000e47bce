package api

import (
	"net/http"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/middleware"
)

// callerFromRequest projects the resolved session identity into a user
// value for service-layer permission checks.
func callerFromRequest(r *http.Request) (*auth.User, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return &auth.User{
		ID:      identity.UserID,
		Email:   identity.Email,
		Role:    identity.Role,
		IsAdmin: identity.IsAdmin,
	}, true
}

// requireCaller writes a 401 and returns false when the request has no
// resolved identity. The route guard already rejects unauthenticated
// page loads; this covers API routes called directly.
func requireCaller(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return nil, false
	}
	return caller, true
}

// pageParams reads limit/offset query parameters with bounds applied.
func pageParams(r *http.Request) (limit, offset int) {
	limit, err := httputil.ParseQueryInt(r, "limit", 50)
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err = httputil.ParseQueryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
