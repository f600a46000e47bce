package middleware

import (
	"net/http"
	"strings"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
)

// Redirect targets for denied navigations
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// Path prefixes with elevated role requirements. The super prefix is
// checked first; it requires the super_admin role itself, the admin
// flag does not count there.
const (
	superAdminPrefix = "/admin/super"
	adminPrefix      = "/admin"
)

// publicExact lists routes reachable without a session
var publicExact = map[string]bool{
	"/":              true,
	"/pricing":       true,
	"/api/campaigns": true,
}

// publicPrefixes cover the sign-in pages, identity provider
// callbacks and payment provider webhooks, which authenticate by
// signature instead of session
var publicPrefixes = []string{
	"/auth/",
	"/api/auth/",
	"/api/webhooks/",
}

// Decision is the outcome of evaluating one navigation
type Decision struct {
	Allow bool
	// RedirectTo is the silent redirect target when denied
	RedirectTo string
	// Rule names the transition that produced the decision, used as a
	// metric label
	Rule string
}

func allow(rule string) Decision {
	return Decision{Allow: true, Rule: rule}
}

func deny(target, rule string) Decision {
	return Decision{Allow: false, RedirectTo: target, Rule: rule}
}

// Evaluate decides whether a navigation to path is allowed for the
// given identity. identity is nil for unauthenticated requests.
// Rules in precedence order: public allowlist, authentication,
// super-admin prefix, admin prefix, then any authenticated session.
func Evaluate(path string, identity *session.Identity) Decision {
	if publicExact[path] {
		return allow("public")
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return allow("public")
		}
	}

	if identity == nil {
		return deny(LoginPath, "unauthenticated")
	}

	if strings.HasPrefix(path, superAdminPrefix) {
		// The admin flag does not grant super admin access
		if !auth.IsSuperAdmin(identity.Role) {
			return deny(DashboardPath, "super_admin_required")
		}
		return allow("super_admin")
	}

	if strings.HasPrefix(path, adminPrefix) {
		if !auth.IsAdminLevel(identity.Role, identity.IsAdmin) {
			return deny(DashboardPath, "admin_required")
		}
		return allow("admin")
	}

	return allow("authenticated")
}

// GuardMiddleware enforces Evaluate on every request. Denials are
// silent see-other redirects.
func GuardMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := IdentityFromContext(r.Context())
			decision := Evaluate(r.URL.Path, identity)

			if metrics != nil {
				outcome := "allow"
				if !decision.Allow {
					outcome = "deny"
				}
				metrics.GuardDecisionsTotal.WithLabelValues(outcome, decision.Rule).Inc()
			}

			if !decision.Allow {
				httputil.Redirect(w, r, decision.RedirectTo)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
