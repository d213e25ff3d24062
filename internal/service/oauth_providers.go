package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"bloggazers/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// ProviderProfile is the subset of an identity provider's profile the
// application consumes.
type ProviderProfile struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// OAuthProvider abstracts one external identity provider.
type OAuthProvider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*ProviderProfile, error)
}

type googleProvider struct {
	cfg *oauth2.Config
}

// NewGoogleProvider builds the Google sign-in provider.
func NewGoogleProvider(cfg *config.Config) OAuthProvider {
	return &googleProvider{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleCallbackURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *googleProvider) Exchange(ctx context.Context, code string) (*ProviderProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, p.cfg.Client(ctx, token), "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}

	return &ProviderProfile{
		ID:        info.ID,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

type githubProvider struct {
	cfg *oauth2.Config
}

// NewGitHubProvider builds the GitHub sign-in provider.
func NewGitHubProvider(cfg *config.Config) OAuthProvider {
	return &githubProvider{cfg: &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubCallbackURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}}
}

func (p *githubProvider) Name() string { return "github" }

func (p *githubProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (*ProviderProfile, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange: %w", err)
	}
	client := p.cfg.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}

	// The profile email is often hidden; fall back to the primary verified
	// address from the emails endpoint.
	if user.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := fetchJSON(ctx, client, "https://api.github.com/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					user.Email = e.Email
					break
				}
			}
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &ProviderProfile{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Name:      name,
		AvatarURL: user.AvatarURL,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
