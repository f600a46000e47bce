package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
	"github.com/BDeshi155/pdf-gpt/pkg/observability"
	"github.com/BDeshi155/pdf-gpt/pkg/profiles"
)

// ProfileService is the slice of the profile store the manager needs
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*auth.User, error)
	EnsureProfile(ctx context.Context, principal auth.ExternalPrincipal) (*auth.User, bool, error)
	VerifyCredentials(ctx context.Context, email, password string) (*auth.User, error)
	RegisterWithPassword(ctx context.Context, email, name, password string) (*auth.User, error)
}

// Manager creates, resolves and revokes sessions. A session stores a
// snapshot of the user's role and admin flag; Resolve re-reads the
// profile once the snapshot is older than the refresh interval, so a
// role change or revoked admin flag propagates without a new sign-in.
type Manager struct {
	store    *Store
	profiles ProfileService
	tokens   *auth.TokenGenerator
	config   config.SessionConfig
	logger   *observability.Logger
	metrics  *observability.Metrics

	now func() time.Time
}

// NewManager creates a session manager. metrics may be nil.
func NewManager(store *Store, profileSvc ProfileService, cfg config.SessionConfig, logger *observability.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		store:    store,
		profiles: profileSvc,
		tokens:   auth.NewTokenGenerator(),
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// SignInFederated signs in a user authenticated by an identity
// provider. The first sign-in for an unknown identity creates a
// free-tier profile. Returns the plaintext token, the profile and
// whether it was just created.
func (m *Manager) SignInFederated(ctx context.Context, principal auth.ExternalPrincipal) (string, *auth.User, bool, error) {
	user, created, err := m.profiles.EnsureProfile(ctx, principal)
	if err != nil {
		m.countSignIn(principal.Provider, "error")
		return "", nil, false, fmt.Errorf("failed to resolve profile: %w", err)
	}

	token, err := m.startSession(ctx, user)
	if err != nil {
		m.countSignIn(principal.Provider, "error")
		return "", nil, false, err
	}

	m.countSignIn(principal.Provider, "success")
	return token, user, created, nil
}

// SignInCredentials signs in a user with email and password
func (m *Manager) SignInCredentials(ctx context.Context, email, password string) (string, *auth.User, error) {
	user, err := m.profiles.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, profiles.ErrInvalidCredentials) {
			m.countSignIn("credentials", "rejected")
		} else {
			m.countSignIn("credentials", "error")
		}
		return "", nil, err
	}

	token, err := m.startSession(ctx, user)
	if err != nil {
		m.countSignIn("credentials", "error")
		return "", nil, err
	}

	m.countSignIn("credentials", "success")
	return token, user, nil
}

// SignUp registers a new email/password profile and signs it in
func (m *Manager) SignUp(ctx context.Context, email, name, password string) (string, *auth.User, error) {
	user, err := m.profiles.RegisterWithPassword(ctx, email, name, password)
	if err != nil {
		return "", nil, err
	}

	token, err := m.startSession(ctx, user)
	if err != nil {
		return "", nil, err
	}

	m.countSignIn("credentials", "registered")
	return token, user, nil
}

func (m *Manager) startSession(ctx context.Context, user *auth.User) (string, error) {
	token, tokenHash, err := m.tokens.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now()
	rec := &Record{
		TokenHash:   tokenHash,
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		IsAdmin:     user.IsAdmin,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.config.TTL),
		RefreshedAt: now,
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a plaintext token to the current identity. The cached
// role snapshot is served while younger than the refresh interval;
// after that the profile is re-read and the session row updated. When
// the profile store is unreachable the cached identity is served only
// within the staleness window, then the session fails closed.
func (m *Manager) Resolve(ctx context.Context, token string) (*Identity, error) {
	return m.resolve(ctx, token, false)
}

// Refresh re-reads the profile immediately, bypassing the refresh
// interval. Used when the client wants role changes picked up without
// waiting for the periodic re-read.
func (m *Manager) Refresh(ctx context.Context, token string) (*Identity, error) {
	return m.resolve(ctx, token, true)
}

func (m *Manager) resolve(ctx context.Context, token string, force bool) (*Identity, error) {
	if err := m.tokens.ValidateTokenFormat(token); err != nil {
		m.countResolution("invalid_token")
		return nil, ErrInvalidToken
	}

	rec, err := m.store.Get(ctx, m.tokens.HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.countResolution("not_found")
		} else {
			m.countResolution("store_error")
		}
		return nil, err
	}

	age := m.now().Sub(rec.RefreshedAt)
	if !force && age <= m.config.RefreshInterval {
		m.countResolution("cached")
		return rec.Identity(), nil
	}

	user, err := m.profiles.GetProfile(ctx, rec.UserID)
	if errors.Is(err, profiles.ErrNotFound) {
		// Profile was deleted; the session dies with it
		if delErr := m.store.Delete(ctx, rec.TokenHash); delErr != nil {
			m.logger.WithError(delErr).Warn("failed to delete orphaned session")
		}
		m.countRefresh("profile_missing")
		m.countResolution("not_found")
		return nil, ErrNotFound
	}
	if err != nil {
		m.countRefresh("error")
		if age <= m.config.StalenessWindow {
			m.logger.WithError(err).
				WithField("user_id", rec.UserID).
				Warn("profile store unreachable, serving cached session identity")
			m.countResolution("stale_served")
			return rec.Identity(), nil
		}
		m.countResolution("failed_closed")
		return nil, fmt.Errorf("%w: %v", ErrStale, err)
	}

	refreshedAt := m.now()
	if err := m.store.UpdateIdentity(ctx, rec.TokenHash, string(user.Role), user.IsAdmin, refreshedAt); err != nil {
		m.logger.WithError(err).Warn("failed to persist refreshed session identity")
	}
	m.countRefresh("success")
	m.countResolution("refreshed")

	return &Identity{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		IsAdmin:     user.IsAdmin,
		RefreshedAt: refreshedAt,
	}, nil
}

// SignOut revokes the session for a token. Unknown tokens are a
// no-op.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	if err := m.tokens.ValidateTokenFormat(token); err != nil {
		return nil
	}
	return m.store.Delete(ctx, m.tokens.HashToken(token))
}

// SignOutAll revokes every session belonging to a user
func (m *Manager) SignOutAll(ctx context.Context, userID string) (int64, error) {
	return m.store.DeleteForUser(ctx, userID)
}

// DeleteExpired removes expired session rows
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager) countSignIn(provider, outcome string) {
	if m.metrics != nil {
		m.metrics.SignInsTotal.WithLabelValues(provider, outcome).Inc()
	}
}

func (m *Manager) countResolution(outcome string) {
	if m.metrics != nil {
		m.metrics.SessionResolutions.WithLabelValues(outcome).Inc()
	}
}

func (m *Manager) countRefresh(outcome string) {
	if m.metrics != nil {
		m.metrics.SessionRefreshesTotal.WithLabelValues(outcome).Inc()
	}
}
