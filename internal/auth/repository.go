package auth

import (
	"context"
	"time"
)

// UserRepository persists users keyed by their (provider, providerId) identity.
// Find methods return (nil, nil) when no record matches.
type UserRepository interface {
	FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	// CreateUser stores user and returns the stored record with its assigned ID.
	// It returns ErrDuplicateIdentity when the identity already exists.
	CreateUser(ctx context.Context, user User) (User, error)
}

// SessionStore holds OAuth handoff sessions between initiate and callback.
type SessionStore interface {
	CreateSession(ctx context.Context, session HandoffSession) error
	// TakeSession reads and deletes the session in one step so a callback can
	// only be completed once. It returns (nil, nil) for unknown ids.
	TakeSession(ctx context.Context, id string) (*HandoffSession, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
