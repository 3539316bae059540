package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubProviderName is the provider key for GitHub sign-in.
const GitHubProviderName = "github"

const defaultGitHubAPIURL = "https://api.github.com"

// GitHubConfig holds the OAuth app registration for GitHub.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overridable for tests.
	Endpoint   oauth2.Endpoint
	APIBaseURL string
	HTTPClient *http.Client
}

// GitHubProvider signs users in with a GitHub OAuth app.
type GitHubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewGitHubProvider creates a GitHub provider.
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = github.Endpoint
	}
	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = defaultGitHubAPIURL
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: apiBase,
		httpClient: cfg.HTTPClient,
	}
}

// Name returns "github".
func (g *GitHubProvider) Name() string {
	return GitHubProviderName
}

// AuthURL returns the GitHub consent screen URL.
func (g *GitHubProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// ExchangeProfile exchanges the code and reads the user from the REST API.
// A private profile email falls back to /user/emails; when that also fails
// the profile carries no email.
func (g *GitHubProvider) ExchangeProfile(ctx context.Context, code string) (*Profile, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github: token exchange: %w", err)
	}
	client := g.config.Client(ctx, token)

	var user githubUser
	if err := g.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, fmt.Errorf("github: fetch profile: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github: empty id in profile")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	profile := &Profile{
		Provider:    GitHubProviderName,
		ID:          strconv.FormatInt(user.ID, 10),
		DisplayName: name,
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		email = g.primaryEmail(ctx, client)
	}
	if email != "" {
		profile.Emails = []ProfileEmail{{Value: email}}
	}
	return profile, nil
}

func (g *GitHubProvider) primaryEmail(ctx context.Context, client *http.Client) string {
	var emails []githubEmail
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}

func (g *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

var _ Provider = (*GitHubProvider)(nil)
