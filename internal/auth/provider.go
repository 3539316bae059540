package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Provider is one third-party identity provider. Each provider owns its own
// code-for-profile exchange; everything after the exchange is shared.
type Provider interface {
	// Name is the provider key used in routes and in the (provider, id) identity.
	Name() string
	// AuthURL returns the consent URL carrying state.
	AuthURL(state string) string
	// ExchangeProfile trades an authorization code for the user's profile.
	ExchangeProfile(ctx context.Context, code string) (*Profile, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers providers, rejecting blank or duplicate names.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		name := strings.TrimSpace(p.Name())
		if name == "" {
			return nil, fmt.Errorf("register provider: empty name")
		}
		if _, exists := r.providers[name]; exists {
			return nil, fmt.Errorf("register provider: %q registered twice", name)
		}
		r.providers[name] = p
	}
	return r, nil
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateState generates a cryptographically secure random state string.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
