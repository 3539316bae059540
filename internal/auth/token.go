package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of an issued bearer token.
const DefaultTokenTTL = 12 * time.Hour

// Claims are the identity facts carried by a bearer token.
type Claims struct {
	SubjectID string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 signed bearer tokens. There is no
// revocation: a token is trusted until its expiry claim passes.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock overrides the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec creates a codec signing with secret. A zero ttl falls back to
// DefaultTokenTTL.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...TokenOption) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	c := &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window applied to issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the subject, email and role in claims. IssuedAt and
// ExpiresAt are always set by the codec.
func (c *TokenCodec) Issue(claims Claims) (string, error) {
	if claims.SubjectID == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}

	now := c.now()
	payload := tokenClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Tokens past their expiry report ErrTokenExpired even if the signature is
// also wrong; every other failure reports ErrTokenMalformed.
func (c *TokenCodec) Verify(raw string) (Claims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || c.expiredUnverified(raw) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if parsed.Subject == "" || parsed.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing required claim", ErrTokenMalformed)
	}

	return Claims{
		SubjectID: parsed.Subject,
		Email:     parsed.Email,
		Role:      parsed.Role,
		IssuedAt:  parsed.IssuedAt.Time,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}

// expiredUnverified reads the expiry claim without checking the signature.
func (c *TokenCodec) expiredUnverified(raw string) bool {
	var unverified tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &unverified); err != nil {
		return false
	}
	if unverified.ExpiresAt == nil {
		return false
	}
	return !c.now().Before(unverified.ExpiresAt.Time)
}
