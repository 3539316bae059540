package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var errBadCookieSignature = errors.New("bad cookie signature")

// CookieSigner authenticates handoff session ids carried in cookies with an
// HMAC-SHA256 over the id.
type CookieSigner struct {
	key []byte
}

// NewCookieSigner creates a signer keyed with secret.
func NewCookieSigner(secret []byte) *CookieSigner {
	return &CookieSigner{key: secret}
}

// Sign returns "<value>.<mac>".
func (s *CookieSigner) Sign(value string) string {
	return value + "." + base64.RawURLEncoding.EncodeToString(s.mac(value))
}

// Verify returns the original value when signed carries a valid MAC.
func (s *CookieSigner) Verify(signed string) (string, error) {
	idx := strings.LastIndexByte(signed, '.')
	if idx <= 0 || idx == len(signed)-1 {
		return "", errBadCookieSignature
	}
	value, encoded := signed[:idx], signed[idx+1:]

	got, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errBadCookieSignature
	}
	if !hmac.Equal(got, s.mac(value)) {
		return "", errBadCookieSignature
	}
	return value, nil
}

func (s *CookieSigner) mac(value string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(value))
	return h.Sum(nil)
}
