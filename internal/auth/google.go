package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProviderName is the provider key for Google sign-in.
const GoogleProviderName = "google"

const googleIssuer = "https://accounts.google.com"

// GoogleConfig holds the OAuth client registration for Google.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// HTTPClient is used for discovery and the code exchange when set.
	HTTPClient *http.Client
}

// GoogleProvider signs users in with Google OAuth 2.0 / OIDC. The profile is
// read from the verified ID token returned with the access token.
type GoogleProvider struct {
	config     *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client
}

// NewGoogleProvider discovers Google's OIDC configuration and creates a provider.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return newGoogleProvider(cfg, google.Endpoint, verifier), nil
}

func newGoogleProvider(cfg GoogleConfig, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier:   verifier,
		httpClient: cfg.HTTPClient,
	}
}

// Name returns "google".
func (g *GoogleProvider) Name() string {
	return GoogleProviderName
}

// AuthURL generates the Google OAuth consent URL with the given state.
func (g *GoogleProvider) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExchangeProfile exchanges the authorization code for tokens and returns
// the profile carried by the verified ID token.
func (g *GoogleProvider) ExchangeProfile(ctx context.Context, code string) (*Profile, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google: token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("google: no id_token in response")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google: verify id_token: %w", err)
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google: parse claims: %w", err)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("google: empty subject in id_token")
	}

	profile := &Profile{
		Provider:    GoogleProviderName,
		ID:          claims.Sub,
		DisplayName: claims.Name,
	}
	if email := strings.TrimSpace(claims.Email); email != "" {
		profile.Emails = []ProfileEmail{{Value: email}}
	}
	return profile, nil
}

var _ Provider = (*GoogleProvider)(nil)
