package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DefaultMaxOpenConns covers the request handlers plus the session sweeper.
const DefaultMaxOpenConns = 10

const connectTimeout = 5 * time.Second

type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// Option adjusts the connection pool.
type Option func(*pool)

// WithMaxOpenConns caps open connections; half of them are kept idle.
// Values below one are ignored.
func WithMaxOpenConns(n int) Option {
	return func(p *pool) {
		if n < 1 {
			return
		}
		p.maxOpen = n
		p.maxIdle = max(1, n/2)
	}
}

func newPool(opts ...Option) pool {
	p := pool{
		maxOpen:     DefaultMaxOpenConns,
		maxIdle:     DefaultMaxOpenConns / 2,
		maxLifetime: 30 * time.Minute,
		maxIdleTime: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewPostgres opens and pings the contactbook database. The ping is bounded
// so a wrong DATABASE_URL fails startup quickly.
func NewPostgres(ctx context.Context, url string, opts ...Option) (*sqlx.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := newPool(opts...)
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)

	return db, nil
}
