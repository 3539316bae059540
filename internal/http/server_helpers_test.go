package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"contactbook/internal/auth"
	"contactbook/internal/config"
	"contactbook/internal/contacts"
	"contactbook/internal/notes"
)

const testPublicURL = "http://api.test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProvider struct {
	name      string
	profile   *auth.Profile
	err       error
	lastState string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthURL(state string) string {
	f.lastState = state
	return "https://provider.test/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) ExchangeProfile(ctx context.Context, code string) (*auth.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	profile := *f.profile
	return &profile, nil
}

type recorderStub struct {
	mu       sync.Mutex
	routes   []string
	logins   []string
	rejected []string
}

func (r *recorderStub) RecordRequest(method, route string, status int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
}

func (r *recorderStub) RecordLogin(provider, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, provider+":"+outcome)
}

func (r *recorderStub) RecordRejectedCredential(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, reason)
}

type testServer struct {
	handler  http.Handler
	codec    *auth.TokenCodec
	users    *auth.MemoryRepository
	cookies  *auth.CookieSigner
	provider *fakeProvider
	metrics  *recorderStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		Environment:    "development",
		AllowedOrigins: []string{"http://localhost:3000"},
		PublicBaseURL:  testPublicURL,
	}

	repo := auth.NewMemoryRepository()
	codec := auth.NewTokenCodec([]byte("test-secret"), auth.DefaultTokenTTL)
	provider := &fakeProvider{
		name: auth.GoogleProviderName,
		profile: &auth.Profile{
			ID:          "42",
			DisplayName: "Ana",
			Emails:      []auth.ProfileEmail{{Value: "ana@x.com"}},
		},
	}
	registry, err := auth.NewRegistry(provider)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	authService := auth.NewService(registry, repo, auth.NewResolver(repo), codec, auth.DefaultSessionTTL)
	cookies := auth.NewCookieSigner([]byte("cookie-secret"))
	recorder := &recorderStub{}

	handler := NewRouter(cfg, Dependencies{
		Contacts: contacts.NewService(contacts.NewInMemoryRepository(nil)),
		Notes:    notes.NewService(notes.NewInMemoryRepository(nil)),
		Auth:     authService,
		Gate:     auth.NewGate(codec),
		Cookies:  cookies,
		Metrics:  recorder,
	}, discardLogger())

	return &testServer{
		handler:  handler,
		codec:    codec,
		users:    repo,
		cookies:  cookies,
		provider: provider,
		metrics:  recorder,
	}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := s.codec.Issue(auth.Claims{SubjectID: "user-1", Email: "ana@x.com", Role: auth.DefaultRole})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// do sends a request through the router. An empty token sends no Authorization header.
func (s *testServer) do(t *testing.T, method, path, body, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
