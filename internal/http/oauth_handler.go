package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"contactbook/internal/auth"
	"contactbook/internal/platform/metrics"
)

const (
	handoffCookieName = "contactbook_oauth_session"
	handoffCookiePath = "/auth"

	successPath = "/auth/success"
	failPath    = "/auth/fail"
)

// OAuthHandler handles the /auth endpoints of the OAuth handoff.
type OAuthHandler struct {
	service      *auth.Service
	cookies      *auth.CookieSigner
	metrics      metrics.Recorder
	logger       *slog.Logger
	secureCookie bool
	publicURL    string
}

// NewOAuthHandler creates a new OAuthHandler. Redirects issued after the
// callback are absolute URLs under publicBaseURL.
func NewOAuthHandler(service *auth.Service, cookies *auth.CookieSigner, recorder metrics.Recorder, publicBaseURL, env string, logger *slog.Logger) *OAuthHandler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &OAuthHandler{
		service:      service,
		cookies:      cookies,
		metrics:      recorder,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		publicURL:    strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// Providers handles GET /auth and lists the configured providers.
func (h *OAuthHandler) Providers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": h.service.Providers()})
}

// Begin handles GET /auth/{provider}.
// It opens a handoff session and redirects to the provider's consent screen.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	authURL, session, err := h.service.Begin(r.Context(), provider, r.URL.Query().Get("redirectTo"))
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			writeMessage(w, http.StatusNotFound, "Unknown provider")
			return
		}
		h.logger.Error("oauth begin failed", "provider", provider, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     handoffCookieName,
		Value:    h.cookies.Sign(session.ID),
		Path:     handoffCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.service.SessionTTL().Seconds()),
	})

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/{provider}/callback.
// The handoff session is consumed whatever the outcome.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var sessionID string
	if cookie, err := r.Cookie(handoffCookieName); err == nil {
		if id, err := h.cookies.Verify(cookie.Value); err == nil {
			sessionID = id
		} else {
			h.logger.Warn("oauth callback: handoff cookie signature mismatch", "provider", provider)
		}
	}
	h.clearHandoffCookie(w)

	query := r.URL.Query()
	result, err := h.service.Complete(r.Context(), auth.CallbackRequest{
		Provider:         provider,
		SessionID:        sessionID,
		State:            query.Get("state"),
		Code:             query.Get("code"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownProvider):
			writeMessage(w, http.StatusNotFound, "Unknown provider")
		case errors.Is(err, auth.ErrHandoffInvalid), errors.Is(err, auth.ErrProviderExchangeFailed):
			h.logger.Warn("oauth callback rejected", "provider", provider, "error", err)
			h.metrics.RecordLogin(provider, "failed")
			http.Redirect(w, r, h.publicURL+failPath, http.StatusTemporaryRedirect)
		default:
			h.logger.Error("oauth callback failed", "provider", provider, "error", err)
			h.metrics.RecordLogin(provider, "error")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.metrics.RecordLogin(provider, "success")
	h.logger.Info("oauth login successful", "provider", provider, "user_id", result.User.ID)

	http.Redirect(w, r, h.successURL(result), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) successURL(result *auth.LoginResult) string {
	target := successPath
	if result.RedirectTo != "" {
		target = result.RedirectTo
	}
	// The token must land in the query, ahead of any fragment.
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: successPath}
	}
	query := u.Query()
	query.Set("token", result.Token)
	u.RawQuery = query.Encode()
	return h.publicURL + u.String()
}

// Success handles GET /auth/success for clients that land on the API itself.
func (h *OAuthHandler) Success(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   r.URL.Query().Get("token"),
	})
}

// Fail handles GET /auth/fail.
func (h *OAuthHandler) Fail(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusUnauthorized, "Authentication Failed")
}

// Logout handles GET /auth/logout. Tokens are stateless, so this only drops
// any handoff cookie still held by the browser.
func (h *OAuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.clearHandoffCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me handles GET /auth/me and echoes the bearer claims.
func (h *OAuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		unauthorized(w, "No token provided")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": claims})
}

func (h *OAuthHandler) clearHandoffCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     handoffCookieName,
		Value:    "",
		Path:     handoffCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
