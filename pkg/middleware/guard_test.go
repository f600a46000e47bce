package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/contextkeys"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
)

func identity(role auth.Role, isAdmin bool) *session.Identity {
	return &session.Identity{UserID: "user-1", Role: role, IsAdmin: isAdmin}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		identity   *session.Identity
		wantAllow  bool
		wantTarget string
	}{
		{
			name:      "home is public without a session",
			path:      "/",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "pricing is public without a session",
			path:      "/pricing",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "login page is public",
			path:      "/auth/login",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "signup page is public",
			path:      "/auth/signup",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "password reset flow is public",
			path:      "/auth/reset-password",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "provider callback is public",
			path:      "/api/auth/callback/google",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:      "active campaign listing is public",
			path:      "/api/campaigns",
			identity:  nil,
			wantAllow: true,
		},
		{
			name:       "dashboard requires a session",
			path:       "/dashboard",
			identity:   nil,
			wantAllow:  false,
			wantTarget: LoginPath,
		},
		{
			name:       "admin path requires a session before any role check",
			path:       "/admin/users",
			identity:   nil,
			wantAllow:  false,
			wantTarget: LoginPath,
		},
		{
			name:      "free user reaches ordinary pages",
			path:      "/dashboard",
			identity:  identity(auth.RoleFreeUser, false),
			wantAllow: true,
		},
		{
			name:       "free user is denied admin pages",
			path:       "/admin/users",
			identity:   identity(auth.RoleFreeUser, false),
			wantAllow:  false,
			wantTarget: DashboardPath,
		},
		{
			name:      "admin role reaches admin pages",
			path:      "/admin/users",
			identity:  identity(auth.RoleAdmin, false),
			wantAllow: true,
		},
		{
			name:      "admin flag grants admin pages regardless of role",
			path:      "/admin/shop",
			identity:  identity(auth.RoleProUser, true),
			wantAllow: true,
		},
		{
			name:       "admin flag does not grant super admin pages",
			path:       "/admin/super/anything",
			identity:   identity(auth.RoleAdmin, true),
			wantAllow:  false,
			wantTarget: DashboardPath,
		},
		{
			name:      "super admin role reaches super admin pages",
			path:      "/admin/super/settings",
			identity:  identity(auth.RoleSuperAdmin, false),
			wantAllow: true,
		},
		{
			name:       "pro user with admin flag is denied super admin pages",
			path:       "/admin/super",
			identity:   identity(auth.RoleProUser, true),
			wantAllow:  false,
			wantTarget: DashboardPath,
		},
		{
			name:      "super admin reaches plain admin pages too",
			path:      "/admin/users",
			identity:  identity(auth.RoleSuperAdmin, false),
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(tt.path, tt.identity)
			assert.Equal(t, tt.wantAllow, decision.Allow)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantTarget, decision.RedirectTo)
			}
		})
	}
}

func TestGuardMiddlewareRedirectsSilently(t *testing.T) {
	handler := GuardMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
}

func TestGuardMiddlewarePassesAllowedRequests(t *testing.T) {
	called := false
	handler := GuardMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	ctx := contextkeys.WithIdentity(r.Context(), identity(auth.RoleAdmin, false))
	handler.ServeHTTP(httptest.NewRecorder(), r.WithContext(ctx))

	assert.True(t, called)
}

func TestGuardMiddlewareDeniedAdminGoesToDashboard(t *testing.T) {
	handler := GuardMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/admin/super/flags", nil)
	ctx := contextkeys.WithIdentity(r.Context(), identity(auth.RoleAdmin, true))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))
}
