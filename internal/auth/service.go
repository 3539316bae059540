package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long a handoff may take between initiate and callback.
const DefaultSessionTTL = 10 * time.Minute

// TokenIssuer signs bearer tokens for resolved users.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
}

// CallbackRequest is what the provider sent back to the callback endpoint,
// together with the session id recovered from the handoff cookie.
type CallbackRequest struct {
	Provider  string
	SessionID string
	State     string
	Code      string
	// Error and ErrorDescription carry a provider-reported failure.
	Error            string
	ErrorDescription string
}

// LoginResult is the outcome of a successful handoff.
type LoginResult struct {
	User       *User
	Token      string
	RedirectTo string
}

// Service runs the OAuth handoff: Begin opens a handoff session and points the
// user agent at the provider; Complete closes it, exchanges the code, resolves
// the identity and issues a token.
type Service struct {
	providers  *Registry
	sessions   SessionStore
	resolver   *Resolver
	tokens     TokenIssuer
	sessionTTL time.Duration
	now        func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithServiceClock overrides the time source for session expiry.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new auth Service.
func NewService(providers *Registry, sessions SessionStore, resolver *Resolver, tokens TokenIssuer, sessionTTL time.Duration, opts ...ServiceOption) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	s := &Service{
		providers:  providers,
		sessions:   sessions,
		resolver:   resolver,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL returns the lifetime of a handoff session.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Providers returns the registered provider names.
func (s *Service) Providers() []string {
	return s.providers.Names()
}

// Begin starts a handoff with the named provider. It stores a fresh session
// and returns the provider consent URL. redirectTo is kept only when it is a
// safe relative path.
func (s *Service) Begin(ctx context.Context, providerName, redirectTo string) (string, HandoffSession, error) {
	provider, err := s.providers.Lookup(providerName)
	if err != nil {
		return "", HandoffSession{}, err
	}

	state, err := GenerateState()
	if err != nil {
		return "", HandoffSession{}, fmt.Errorf("generate state: %w", err)
	}

	if !isValidRedirectPath(redirectTo) {
		redirectTo = ""
	}

	now := s.now().UTC()
	session := HandoffSession{
		ID:         uuid.NewString(),
		Provider:   provider.Name(),
		State:      state,
		RedirectTo: redirectTo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", HandoffSession{}, fmt.Errorf("create session: %w", err)
	}

	return provider.AuthURL(state), session, nil
}

// Complete finishes the handoff described by req. The handoff session is
// consumed whatever the outcome. Failures before the identity is resolved
// report ErrHandoffInvalid or ErrProviderExchangeFailed.
func (s *Service) Complete(ctx context.Context, req CallbackRequest) (*LoginResult, error) {
	var session *HandoffSession
	if req.SessionID != "" {
		taken, err := s.sessions.TakeSession(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("take session: %w", err)
		}
		session = taken
	}

	provider, err := s.providers.Lookup(req.Provider)
	if err != nil {
		return nil, err
	}

	switch {
	case req.SessionID == "":
		return nil, fmt.Errorf("%w: no session", ErrHandoffInvalid)
	case session == nil:
		return nil, fmt.Errorf("%w: unknown session", ErrHandoffInvalid)
	case session.Expired(s.now()):
		return nil, fmt.Errorf("%w: session expired", ErrHandoffInvalid)
	case session.Provider != provider.Name():
		return nil, fmt.Errorf("%w: provider mismatch", ErrHandoffInvalid)
	case subtle.ConstantTimeCompare([]byte(session.State), []byte(req.State)) != 1:
		return nil, fmt.Errorf("%w: state mismatch", ErrHandoffInvalid)
	}

	if req.Error != "" {
		return nil, fmt.Errorf("%w: provider reported %s %s", ErrProviderExchangeFailed, req.Error, req.ErrorDescription)
	}
	if req.Code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrProviderExchangeFailed)
	}

	profile, err := provider.ExchangeProfile(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderExchangeFailed, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: empty profile", ErrProviderExchangeFailed)
	}
	// The registered name is authoritative so identities never cross providers.
	profile.Provider = provider.Name()

	user, err := s.resolver.Resolve(ctx, *profile)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	token, err := s.tokens.Issue(Claims{
		SubjectID: user.ID,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		User:       user,
		Token:      token,
		RedirectTo: session.RedirectTo,
	}, nil
}

// CleanupExpiredSessions removes handoff sessions that were never completed.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

// isValidRedirectPath reports whether path is a safe relative redirect: a
// single leading "/", no scheme or host, even after unescaping.
func isValidRedirectPath(path string) bool {
	if path == "" {
		return false
	}

	decoded, err := url.QueryUnescape(path)
	if err != nil {
		return false
	}
	if !strings.HasPrefix(decoded, "/") || strings.HasPrefix(decoded, "//") || strings.Contains(decoded, "\\") {
		return false
	}

	parsed, err := url.Parse(decoded)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}
