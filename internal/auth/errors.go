package auth

import "errors"

// Token codec errors.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// Authorization gate errors. All of them surface as 401 with a generic message.
var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrInvalidCredential   = errors.New("invalid credential")
)

// Handoff errors.
var (
	// ErrProviderExchangeFailed covers provider-reported failures and failed
	// code-for-profile exchanges.
	ErrProviderExchangeFailed = errors.New("provider exchange failed")
	// ErrHandoffInvalid is returned when the callback cannot be correlated with
	// a live handoff session.
	ErrHandoffInvalid = errors.New("oauth handoff invalid")
	// ErrUnknownProvider is returned for provider names with no registration.
	ErrUnknownProvider = errors.New("unknown oauth provider")
)

// ErrDuplicateIdentity is returned by a UserRepository when the store's
// uniqueness constraint on (provider, providerId) rejects a create.
var ErrDuplicateIdentity = errors.New("identity already exists")
