package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/BDeshi155/pdf-gpt/pkg/auth"
	"github.com/BDeshi155/pdf-gpt/pkg/config"
)

const (
	githubAuthURL   = "https://github.com/login/oauth/authorize"
	githubTokenURL  = "https://github.com/login/oauth/access_token"
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubProvider implements sign-in with GitHub via OAuth2
type GitHubProvider struct {
	oauth2Config *oauth2.Config
}

// NewGitHubProvider builds the GitHub provider
func NewGitHubProvider(cfg config.OAuthConfig) *GitHubProvider {
	return &GitHubProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  githubAuthURL,
				TokenURL: githubTokenURL,
			},
			RedirectURL: cfg.RedirectBaseURL + "/api/auth/callback/github",
			Scopes:      []string{"read:user", "user:email"},
		},
	}
}

// Name returns "github"
func (p *GitHubProvider) Name() string {
	return "github"
}

// AuthCodeURL returns GitHub's authorization URL
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

// HandleCallback exchanges the code and fetches the user's profile
func (p *GitHubProvider) HandleCallback(ctx context.Context, r *http.Request) (*auth.ExternalPrincipal, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	client := p.oauth2Config.Client(ctx, token)

	var githubUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(client, githubUserURL, &githubUser); err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	email := githubUser.Email
	if email == "" {
		// Profile email is hidden; the emails endpoint still lists it
		email, err = p.primaryEmail(client)
		if err != nil {
			return nil, err
		}
	}

	name := githubUser.Name
	if name == "" {
		name = githubUser.Login
	}

	return &auth.ExternalPrincipal{
		Provider:   p.Name(),
		ExternalID: strconv.FormatInt(githubUser.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  githubUser.AvatarURL,
	}, nil
}

func (p *GitHubProvider) primaryEmail(client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := fetchJSON(client, githubEmailsURL, &emails); err != nil {
		return "", fmt.Errorf("failed to fetch user emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("no verified primary email on github account")
}

func fetchJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
