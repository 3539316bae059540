package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"contactbook/internal/auth"
	"contactbook/internal/config"
	"contactbook/internal/contacts"
	"contactbook/internal/notes"
	"contactbook/internal/platform/metrics"
)

// Dependencies groups what the router needs to serve every route.
type Dependencies struct {
	Contacts    *contacts.Service
	Notes       *notes.Service
	Auth        *auth.Service
	Gate        *auth.Gate
	Cookies     *auth.CookieSigner
	Metrics     metrics.Recorder
	MetricsHTTP http.Handler
}

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, deps Dependencies, logger *slog.Logger) http.Handler {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newMetricsMiddleware(recorder))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	if deps.MetricsHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHTTP)
	}

	requireBearer := newBearerAuthMiddleware(deps.Gate, recorder, logger)
	oauthHandler := NewOAuthHandler(deps.Auth, deps.Cookies, recorder, cfg.PublicBaseURL, cfg.Environment, logger)
	contactHandler := NewContactHandler(deps.Contacts, logger)
	noteHandler := NewNoteHandler(deps.Notes, logger)
	transferHandler := NewContactTransferHandler(deps.Contacts, logger)

	if len(deps.Auth.Providers()) == 0 {
		logger.Warn("no OAuth providers configured; tokens cannot be obtained")
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(newRateLimitMiddleware(cfg.AuthRateLimit))

		r.Get("/", oauthHandler.Providers)
		r.Get("/success", oauthHandler.Success)
		r.Get("/fail", oauthHandler.Fail)
		r.Get("/logout", oauthHandler.Logout)
		r.With(requireBearer).Get("/me", oauthHandler.Me)
		r.Get("/{provider}", oauthHandler.Begin)
		r.Get("/{provider}/callback", oauthHandler.Callback)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requireBearer)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Get("/export", transferHandler.ExportCSV)
			r.Post("/import", transferHandler.ImportCSV)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", contactHandler.Get)
				r.Put("/", contactHandler.Update)
				r.Delete("/", contactHandler.Delete)
			})
		})
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.Post("/", noteHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", noteHandler.Get)
				r.Put("/", noteHandler.Update)
				r.Delete("/", noteHandler.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	return r
}
