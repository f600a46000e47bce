package sso

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
)

const googleIssuerURL = "https://accounts.google.com"

// GoogleProvider implements sign-in with Google via OpenID Connect
type GoogleProvider struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// NewGoogleProvider discovers Google's OIDC endpoints and builds the
// provider
func NewGoogleProvider(ctx context.Context, cfg config.OAuthConfig) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.RedirectBaseURL + "/api/auth/callback/google",
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &GoogleProvider{
		verifier:     verifier,
		oauth2Config: oauth2Config,
	}, nil
}

// Name returns "google"
func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL returns Google's authorization URL
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// HandleCallback exchanges the code and verifies the ID token
func (p *GoogleProvider) HandleCallback(ctx context.Context, r *http.Request) (*auth.ExternalPrincipal, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("missing id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("missing email in ID token")
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("google account email is not verified")
	}

	return &auth.ExternalPrincipal{
		Provider:   p.Name(),
		ExternalID: idToken.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
		AvatarURL:  claims.Picture,
	}, nil
}
