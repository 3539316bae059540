package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// StoreMemory keeps every collection in process memory.
	StoreMemory = "memory"
	// StorePostgres persists collections to PostgreSQL.
	StorePostgres = "postgres"
	// StoreMongo persists collections to MongoDB.
	StoreMongo = "mongo"
)

const (
	devJWTSecret     = "contactbook-development-jwt-secret"
	devSessionSecret = "contactbook-development-session-secret"
)

// Config aggregates runtime configuration for the contactbook API.
type Config struct {
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	HTTPPort       int           `env:"PORT" envDefault:"8080"`
	DataStore      string        `env:"DATA_STORE" envDefault:"memory"`
	MongoDatabase  string        `env:"MONGO_DATABASE" envDefault:"contactbook"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"text"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"10m"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"30"`
	DBMaxConns     int           `env:"DATABASE_MAX_CONNS" envDefault:"10"`

	GoogleClientID    string `env:"GOOGLE_CLIENT_ID"`
	GoogleCallbackURL string `env:"GOOGLE_CALLBACK_URL"`
	GitHubClientID    string `env:"GITHUB_CLIENT_ID"`
	GitHubCallbackURL string `env:"GITHUB_CALLBACK_URL"`

	// Secrets are resolved from VAR, VAR_FILE or the default secrets mount.
	DatabaseURL        string
	MongoURI           string
	JWTSecret          string
	SessionSecret      string
	GoogleClientSecret string
	GitHubClientSecret string
}

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	secrets := []struct {
		key  string
		path string
		dst  *string
	}{
		{"DATABASE_URL", "/run/secrets/contactbook_database_url", &cfg.DatabaseURL},
		{"MONGO_URI", "/run/secrets/contactbook_mongo_uri", &cfg.MongoURI},
		{"JWT_SECRET", "/run/secrets/contactbook_jwt_secret", &cfg.JWTSecret},
		{"SESSION_SECRET", "/run/secrets/contactbook_session_secret", &cfg.SessionSecret},
		{"GOOGLE_CLIENT_SECRET", "/run/secrets/contactbook_google_client_secret", &cfg.GoogleClientSecret},
		{"GITHUB_CLIENT_SECRET", "/run/secrets/contactbook_github_client_secret", &cfg.GitHubClientSecret},
	}
	for _, s := range secrets {
		value, err := getEnvOrFile(s.key, s.path)
		if err != nil {
			return Config{}, err
		}
		*s.dst = strings.TrimSpace(value)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.DataStore = strings.ToLower(strings.TrimSpace(cfg.DataStore))
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	cfg.PublicBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataStore {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("DATA_STORE is mongo but MONGO_URI is not set")
		}
	default:
		return fmt.Errorf("unsupported DATA_STORE %q", c.DataStore)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid port %d", c.HTTPPort)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.GoogleClientID != "" && (c.GoogleClientSecret == "" || c.GoogleCallbackURL == "") {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET and GOOGLE_CALLBACK_URL are required when GOOGLE_CLIENT_ID is set")
	}
	if c.GitHubClientID != "" && (c.GitHubClientSecret == "" || c.GitHubCallbackURL == "") {
		return fmt.Errorf("GITHUB_CLIENT_SECRET and GITHUB_CALLBACK_URL are required when GITHUB_CLIENT_ID is set")
	}

	if c.IsDevelopment() {
		if c.JWTSecret == "" {
			c.JWTSecret = devJWTSecret
		}
		if c.SessionSecret == "" {
			c.SessionSecret = devSessionSecret
		}
		return nil
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required outside development")
	}
	if !c.GoogleEnabled() && !c.GitHubEnabled() {
		return fmt.Errorf("GOOGLE_CLIENT_ID or GITHUB_CLIENT_ID is required outside development")
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard ALLOWED_ORIGINS is not permitted outside development")
		}
	}
	return nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsDevelopment reports whether the service runs in local development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// GoogleEnabled returns true if Google sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// GitHubEnabled returns true if GitHub sign-in is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
