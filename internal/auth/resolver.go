package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolver maps provider identities onto local users, creating the user on
// first sign-in.
type Resolver struct {
	users UserRepository
}

// NewResolver creates a Resolver backed by users.
func NewResolver(users UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the user bound to profile's (provider, id) identity,
// creating it with DefaultRole when absent. When a concurrent sign-in wins
// the create, the winner's record is read back and returned.
func (r *Resolver) Resolve(ctx context.Context, profile Profile) (*User, error) {
	provider := strings.TrimSpace(profile.Provider)
	providerID := strings.TrimSpace(profile.ID)
	if provider == "" || providerID == "" {
		return nil, fmt.Errorf("resolve identity: provider and id are required")
	}

	existing, err := r.users.FindUserByOAuth(ctx, provider, providerID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created, err := r.users.CreateUser(ctx, User{
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: profile.DisplayName,
		Email:       profile.PrimaryEmail(),
		Role:        DefaultRole,
	})
	if err == nil {
		return &created, nil
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	winner, err := r.users.FindUserByOAuth(ctx, provider, providerID)
	if err != nil {
		return nil, fmt.Errorf("find user after conflict: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("find user after conflict: %s/%s vanished", provider, providerID)
	}
	return winner, nil
}
