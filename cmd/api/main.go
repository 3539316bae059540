package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"contactbook/internal/auth"
	"contactbook/internal/config"
	"contactbook/internal/contacts"
	transporthttp "contactbook/internal/http"
	"contactbook/internal/notes"
	"contactbook/internal/platform/database"
	"contactbook/internal/platform/docstore"
	"contactbook/internal/platform/logging"
	"contactbook/internal/platform/metrics"
	"contactbook/internal/platform/migrate"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repos.cleanup()

	providerClient := &http.Client{Timeout: 10 * time.Second}
	registry, err := buildProviders(ctx, cfg, providerClient)
	if err != nil {
		logger.Error("failed to initialize oauth providers", "error", err)
		os.Exit(1)
	}

	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authService := auth.NewService(registry, repos.sessions, auth.NewResolver(repos.users), codec, cfg.SessionTTL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := transporthttp.NewRouter(cfg, transporthttp.Dependencies{
		Contacts:    contacts.NewService(repos.contacts),
		Notes:       notes.NewService(repos.notes),
		Auth:        authService,
		Gate:        auth.NewGate(codec),
		Cookies:     auth.NewCookieSigner([]byte(cfg.SessionSecret)),
		Metrics:     metrics.NewCollector(reg),
		MetricsHTTP: metrics.Handler(reg),
	}, logger)

	sweeper := auth.NewSessionSweeper(authService, time.Minute, logger)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("contactbook API listening", "addr", srv.Addr, "store", cfg.DataStore, "providers", registry.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

type repositories struct {
	contacts contacts.Repository
	notes    notes.Repository
	users    auth.UserRepository
	sessions auth.SessionStore
	cleanup  func()
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, error) {
	switch cfg.DataStore {
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.WithMaxOpenConns(cfg.DBMaxConns))
		if err != nil {
			return repositories{}, err
		}
		cleanup := func() {
			_ = db.Close()
		}

		if err := migrate.Apply(ctx, db, logger); err != nil {
			cleanup()
			return repositories{}, err
		}

		logger.Info("connected to postgres")
		authRepo := auth.NewPostgresRepository(db)
		return repositories{
			contacts: contacts.NewPostgresRepository(db),
			notes:    notes.NewPostgresRepository(db),
			users:    authRepo,
			sessions: authRepo,
			cleanup:  cleanup,
		}, nil

	case config.StoreMongo:
		db, disconnect, err := docstore.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return repositories{}, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = disconnect(disconnectCtx)
		}

		if err := docstore.EnsureIndexes(ctx, db); err != nil {
			cleanup()
			return repositories{}, err
		}

		logger.Info("connected to mongo", "database", cfg.MongoDatabase)
		authRepo := auth.NewMongoRepository(db)
		return repositories{
			contacts: contacts.NewMongoRepository(db),
			notes:    notes.NewMongoRepository(db),
			users:    authRepo,
			sessions: authRepo,
			cleanup:  cleanup,
		}, nil

	default:
		logger.Info("using in-memory repository")
		authRepo := auth.NewMemoryRepository()
		return repositories{
			contacts: contacts.NewInMemoryRepository(seedContacts()),
			notes:    notes.NewInMemoryRepository(seedNotes()),
			users:    authRepo,
			sessions: authRepo,
			cleanup:  func() {},
		}, nil
	}
}

func buildProviders(ctx context.Context, cfg config.Config, client *http.Client) (*auth.Registry, error) {
	var providers []auth.Provider

	if cfg.GoogleEnabled() {
		google, err := auth.NewGoogleProvider(ctx, auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			HTTPClient:   client,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	}

	if cfg.GitHubEnabled() {
		providers = append(providers, auth.NewGitHubProvider(auth.GitHubConfig{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubCallbackURL,
			HTTPClient:   client,
		}))
	}

	return auth.NewRegistry(providers...)
}
