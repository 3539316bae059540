package auth

import (
	"fmt"
	"strings"
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (Claims, error)
}

// Gate authorizes requests from the value of their Authorization header.
// Authorization is purely claims based: the user record is never re-read.
type Gate struct {
	verifier TokenVerifier
}

// NewGate creates a Gate backed by verifier.
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Authorize validates header, which must be exactly "Bearer <token>".
func (g *Gate) Authorize(header string) (Claims, error) {
	if header == "" {
		return Claims{}, ErrMissingCredential
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Claims{}, ErrMalformedCredential
	}

	claims, err := g.verifier.Verify(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	return claims, nil
}
