package sso

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
)

// Provider is a federated identity provider
type Provider interface {
	// Name returns the provider identifier used in routes and on
	// identity mappings ("google", "github")
	Name() string

	// AuthCodeURL returns the provider's authorization URL for the
	// given CSRF state
	AuthCodeURL(state string) string

	// HandleCallback exchanges the authorization code carried by the
	// callback request for an authenticated principal
	HandleCallback(ctx context.Context, r *http.Request) (*auth.ExternalPrincipal, error)
}

// Registry holds the configured providers keyed by name
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds providers from configuration. Providers without
// credentials are skipped.
func NewRegistry(ctx context.Context, cfg config.OAuthConfig) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google, err := NewGoogleProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure google provider: %w", err)
		}
		r.providers[google.Name()] = google
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		github := NewGitHubProvider(cfg)
		r.providers[github.Name()] = github
	}

	return r, nil
}

// Get returns the provider with the given name
func (r *Registry) Get(name string) (Provider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider: %s", name)
	}
	return provider, nil
}

// Names returns the configured provider names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
