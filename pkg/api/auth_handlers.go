package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BDeshi155/pdf-gpt/pkg/config"
	"github.com/BDeshi155/pdf-gpt/pkg/httputil"
	"github.com/BDeshi155/pdf-gpt/pkg/middleware"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
	"github.com/BDeshi155/pdf-gpt/pkg/session"
	"github.com/BDeshi155/pdf-gpt/pkg/sso"
)

// AuthHandlers serves sign-up, sign-in, sign-out and the identity
// provider redirect flow.
type AuthHandlers struct {
	sessions  *session.Manager
	providers *sso.Registry
	config    *config.Config
	logger    *observability.Logger
}

// NewAuthHandlers creates auth handlers
func NewAuthHandlers(sessions *session.Manager, providers *sso.Registry, cfg *config.Config, logger *observability.Logger) *AuthHandlers {
	return &AuthHandlers{
		sessions:  sessions,
		providers: providers,
		config:    cfg,
		logger:    logger.WithField("component", "auth_handlers"),
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/signup", h.signUp).Methods("POST")
	router.HandleFunc("/api/auth/signin", h.signIn).Methods("POST")
	router.HandleFunc("/api/auth/signout", h.signOut).Methods("POST")
	router.HandleFunc("/api/auth/refresh", h.refresh).Methods("POST")
	router.HandleFunc("/api/auth/providers", h.listProviders).Methods("GET")
	router.HandleFunc("/api/auth/login/{provider}", h.beginFederated).Methods("GET")
	router.HandleFunc("/api/auth/callback/{provider}", h.completeFederated).Methods("GET")
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	token, user, err := h.sessions.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, profiles.ErrEmailTaken) {
			httputil.WriteConflict(w, "an account with that email already exists")
			return
		}
		h.logger.WithError(err).Error("sign-up failed")
		httputil.WriteInternalError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteCreated(w, user)
}

func (h *AuthHandlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	token, user, err := h.sessions.SignInCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, profiles.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "invalid email or password")
			return
		}
		h.logger.WithError(err).Error("sign-in failed")
		httputil.WriteInternalError(w, err)
		return
	}

	h.setSessionCookie(w, token)
	httputil.WriteSuccess(w, user)
}

func (h *AuthHandlers) signOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.config.Session.CookieName); err == nil {
		if err := h.sessions.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger.WithError(err).Warn("sign-out failed")
		}
	}
	h.clearSessionCookie(w)
	httputil.WriteNoContent(w)
}

// refresh forces an immediate profile re-read so a role change shows
// up without waiting for the periodic refresh. A dead session clears
// the cookie.
func (h *AuthHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.config.Session.CookieName)
	if err != nil {
		httputil.WriteUnauthorized(w, "no active session")
		return
	}

	identity, err := h.sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidToken),
			errors.Is(err, session.ErrNotFound),
			errors.Is(err, session.ErrStale):
			h.clearSessionCookie(w)
			httputil.WriteUnauthorized(w, "session is no longer valid")
		default:
			h.logger.WithError(err).Error("session refresh failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteSuccess(w, identity)
}

func (h *AuthHandlers) listProviders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{"providers": h.providers.Names()})
}

// beginFederated starts the redirect flow for the named provider
func (h *AuthHandlers) beginFederated(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "provider")
	if !ok {
		return
	}

	provider, err := h.providers.Get(name)
	if err != nil {
		httputil.WriteNotFoundError(w, "unknown identity provider")
		return
	}

	state, err := sso.NewState(w, h.config.Session.CookieSecure)
	if err != nil {
		h.logger.WithError(err).Error("failed to issue oauth state")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.Redirect(w, r, provider.AuthCodeURL(state))
}

// completeFederated handles the provider callback. Failures redirect
// to the error page rather than rendering a response body.
func (h *AuthHandlers) completeFederated(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "provider")
	if !ok {
		return
	}

	provider, err := h.providers.Get(name)
	if err != nil {
		httputil.WriteNotFoundError(w, "unknown identity provider")
		return
	}

	if err := sso.VerifyState(w, r); err != nil {
		h.logger.WithError(err).Warn("oauth state verification failed")
		httputil.Redirect(w, r, "/auth/error")
		return
	}

	principal, err := provider.HandleCallback(r.Context(), r)
	if err != nil {
		h.logger.WithError(err).WithField("provider", name).Warn("identity provider callback failed")
		httputil.Redirect(w, r, "/auth/error")
		return
	}

	token, user, created, err := h.sessions.SignInFederated(r.Context(), *principal)
	if err != nil {
		h.logger.WithError(err).WithField("provider", name).Error("federated sign-in failed")
		httputil.Redirect(w, r, "/auth/error")
		return
	}

	if created {
		h.logger.WithFields(map[string]interface{}{
			"user_id":  user.ID,
			"provider": name,
		}).Info("provisioned account on first federated sign-in")
	}

	h.setSessionCookie(w, token)
	httputil.Redirect(w, r, middleware.DashboardPath)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Session.TTL / time.Second),
		HttpOnly: true,
		Secure:   h.config.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
