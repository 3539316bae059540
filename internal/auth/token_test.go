package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenCodecRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec([]byte("secret"), 12*time.Hour, WithClock(fixedClock(now)))

	token, err := codec.Issue(Claims{SubjectID: "user-1", Email: "ana@example.com", Role: DefaultRole})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact JWS, got %q", token)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.SubjectID != "user-1" || claims.Email != "ana@example.com" || claims.Role != DefaultRole {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.IssuedAt.Equal(now) {
		t.Fatalf("expected issued at %s, got %s", now, claims.IssuedAt)
	}
	if !claims.ExpiresAt.Equal(now.Add(12 * time.Hour)) {
		t.Fatalf("expected expiry 12h after issue, got %s", claims.ExpiresAt)
	}
}

func TestTokenCodecDefaultsTTL(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"), 0)
	if codec.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default TTL, got %s", codec.TTL())
	}
}

func TestTokenCodecIssueRequiresSubject(t *testing.T) {
	codec := NewTokenCodec([]byte("secret"), time.Hour)
	if _, err := codec.Issue(Claims{Email: "x@example.com"}); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestTokenCodecVerifyExpired(t *testing.T) {
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenCodec([]byte("secret"), time.Hour, WithClock(fixedClock(issued)))
	token, err := issuer.Issue(Claims{SubjectID: "user-1", Role: DefaultRole})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tests := []struct {
		name   string
		secret string
	}{
		{"valid signature", "secret"},
		{"bad signature", "other-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			later := NewTokenCodec([]byte(tt.secret), time.Hour, WithClock(fixedClock(issued.Add(2*time.Hour))))
			_, err := later.Verify(token)
			if !errors.Is(err, ErrTokenExpired) {
				t.Fatalf("expected ErrTokenExpired, got %v", err)
			}
		})
	}
}

func TestTokenCodecVerifyAtExactExpiry(t *testing.T) {
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenCodec([]byte("secret"), time.Hour, WithClock(fixedClock(issued)))
	token, err := issuer.Issue(Claims{SubjectID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	verifier := NewTokenCodec([]byte("secret"), time.Hour, WithClock(fixedClock(issued.Add(time.Hour))))
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected token to be expired at its expiry instant, got %v", err)
	}
}

func TestTokenCodecVerifyMalformed(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	codec := NewTokenCodec([]byte("secret"), time.Hour, WithClock(fixedClock(now)))

	valid, err := codec.Issue(Claims{SubjectID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user-1",
		IssuedAt: jwt.NewNumericDate(now),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token without expiry: %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token without subject: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered payload", valid[:len(valid)-4] + "abcd"},
		{"wrong secret", mustIssue(t, NewTokenCodec([]byte("other"), time.Hour, WithClock(fixedClock(now))))},
		{"none algorithm", noneToken},
		{"missing expiry", noExpiry},
		{"missing subject", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Fatalf("expected ErrTokenMalformed, got %v", err)
			}
		})
	}
}

func mustIssue(t *testing.T, codec *TokenCodec) string {
	t.Helper()
	token, err := codec.Issue(Claims{SubjectID: "user-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	return token
}
