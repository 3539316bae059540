package auth

import (
	"strings"
	"time"
)

// DefaultRole is assigned to every user created through OAuth sign-in.
const DefaultRole = "user"

// User is the local account bound to one third-party identity.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"providerId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProfileEmail is one address reported by an OAuth provider.
type ProfileEmail struct {
	Value string `json:"value"`
}

// Profile is the identity an OAuth provider hands back after a successful exchange.
type Profile struct {
	Provider    string         `json:"provider"`
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Emails      []ProfileEmail `json:"emails"`
}

// PrimaryEmail returns the first reported address, or "" when the provider
// reported none.
func (p Profile) PrimaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return strings.TrimSpace(p.Emails[0].Value)
}

// HandoffSession correlates one OAuth redirect exchange. It lives only between
// the initiate and callback requests.
type HandoffSession struct {
	ID         string
	Provider   string
	State      string
	RedirectTo string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s HandoffSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
