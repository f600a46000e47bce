package middleware

import (
	"context"
	"net/http"

	"github.com/BDeshi155/pdf-gpt/pkg/contextkeys"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
)

// SessionMiddleware resolves the request's session token and attaches
// the identity to the context. Requests without a token, or whose
// token fails to resolve, continue unauthenticated; the route guard
// decides what they may reach.
type SessionMiddleware struct {
	manager    *session.Manager
	cookieName string
	logger     *observability.Logger
}

// NewSessionMiddleware creates the session middleware
func NewSessionMiddleware(manager *session.Manager, cookieName string, logger *observability.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		manager:    manager,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Handler wraps next with session resolution
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.manager.Resolve(r.Context(), token)
		if err != nil {
			m.logger.WithError(err).Debug("session resolution failed")
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextkeys.WithIdentity(r.Context(), identity)
		ctx = contextkeys.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken prefers the session cookie, falling back to a bearer
// token for API clients
func (m *SessionMiddleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return httputil.BearerToken(r)
}

// IdentityFromContext returns the resolved identity, if any
func IdentityFromContext(ctx context.Context) (*session.Identity, bool) {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(*session.Identity)
	return identity, ok && identity != nil
}
