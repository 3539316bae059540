package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contactbook/internal/auth"
)

func TestBearerAuthMiddleware(t *testing.T) {
	secret := []byte("gate-secret")
	codec := auth.NewTokenCodec(secret, time.Hour)
	fresh, err := codec.Issue(auth.Claims{SubjectID: "user-1", Email: "ana@x.com", Role: "user"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	past := auth.NewTokenCodec(secret, time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	expired, err := past.Issue(auth.Claims{SubjectID: "user-1"})
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	tests := []struct {
		name        string
		header      string
		wantMessage string
		wantReason  string
	}{
		{"missing header", "", "No token provided", "missing"},
		{"wrong scheme", "Token abc", "Malformed token", "malformed"},
		{"three parts", "Bearer abc def", "Malformed token", "malformed"},
		{"lowercase scheme", "bearer " + fresh, "Malformed token", "malformed"},
		{"expired token", "Bearer " + expired, "Invalid token", "expired"},
		{"garbage token", "Bearer not.a.jwt", "Invalid token", "invalid"},
		{"empty token", "Bearer ", "Invalid token", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &recorderStub{}
			called := false
			next := newBearerAuthMiddleware(auth.NewGate(codec), recorder, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, req)

			if called {
				t.Fatal("expected protected handler not to run")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("expected WWW-Authenticate header, got %q", rec.Header().Get("WWW-Authenticate"))
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["message"] != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, body["message"])
			}
			if len(recorder.rejected) != 1 || recorder.rejected[0] != tt.wantReason {
				t.Fatalf("expected rejection reason %q, got %v", tt.wantReason, recorder.rejected)
			}
		})
	}
}

func TestBearerAuthMiddlewareAttachesClaims(t *testing.T) {
	codec := auth.NewTokenCodec([]byte("gate-secret"), time.Hour)
	token, err := codec.Issue(auth.Claims{SubjectID: "user-1", Email: "ana@x.com", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got auth.Claims
	next := newBearerAuthMiddleware(auth.NewGate(codec), &recorderStub{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("expected claims in context")
		}
		got = claims
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to proceed, got %d", rec.Code)
	}
	if got.SubjectID != "user-1" || got.Email != "ana@x.com" || got.Role != "admin" {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newSecurityHeadersMiddleware(env)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Fatal("expected nosniff header")
			}
			hsts := rec.Header().Get("Strict-Transport-Security")
			if env == "development" && hsts != "" {
				t.Fatalf("expected no HSTS in development, got %q", hsts)
			}
			if env == "production" && hsts == "" {
				t.Fatal("expected HSTS outside development")
			}
		})
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := newIPRateLimiter(2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("10.0.0.1:1234"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, rec.Code)
		}
	}

	rec := send("10.0.0.1:5678")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once burst is spent, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "30" {
		t.Fatalf("expected Retry-After 30, got %q", rec.Header().Get("Retry-After"))
	}

	if rec := send("10.0.0.2:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected other client to be unaffected, got %d", rec.Code)
	}

	now = now.Add(31 * time.Second)
	if rec := send("10.0.0.1:1234"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected a token to be refilled, got %d", rec.Code)
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	srv := newTestServer(t)

	srv.do(t, http.MethodGet, "/api/contacts/6f1c2a00-0000-4000-8000-000000000000", "", srv.token(t))

	if len(srv.metrics.routes) != 1 {
		t.Fatalf("expected one recorded request, got %v", srv.metrics.routes)
	}
	route := srv.metrics.routes[0]
	if !strings.Contains(route, "/api/contacts/{id}") || strings.Contains(route, "6f1c2a00") {
		t.Fatalf("expected templated route, got %q", route)
	}
}
