package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresRepository implements UserRepository and SessionStore using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindUserByOAuth looks up a user by their OAuth provider and provider ID.
func (r *PostgresRepository) FindUserByOAuth(ctx context.Context, provider, providerID string) (*User, error) {
	const query = `
		SELECT id, provider, provider_id, display_name, email, role, created_at
		FROM users
		WHERE provider = $1 AND provider_id = $2
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, provider, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// FindUserByID looks up a user by primary key. Ids that are not UUIDs match nothing.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id string) (*User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	const query = `
		SELECT id, provider, provider_id, display_name, email, role, created_at
		FROM users
		WHERE id = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, parsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// CreateUser inserts a new user. A violation of users_provider_identity_key
// is reported as ErrDuplicateIdentity.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, provider, provider_id, display_name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		user.Provider,
		user.ProviderID,
		user.DisplayName,
		user.Email,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return User{}, ErrDuplicateIdentity
		}
		return User{}, err
	}

	user.ID = id.String()
	return user, nil
}

// CreateSession inserts a handoff session.
func (r *PostgresRepository) CreateSession(ctx context.Context, session HandoffSession) error {
	const query = `
		INSERT INTO oauth_sessions (id, provider, state, redirect_to, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	id, err := uuid.Parse(session.ID)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		id,
		session.Provider,
		session.State,
		session.RedirectTo,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

// TakeSession deletes the session and returns the deleted row.
func (r *PostgresRepository) TakeSession(ctx context.Context, id string) (*HandoffSession, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	const query = `
		DELETE FROM oauth_sessions
		WHERE id = $1
		RETURNING id, provider, state, redirect_to, created_at, expires_at
	`

	var row sessionRow
	if err := r.db.GetContext(ctx, &row, query, parsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toSession(), nil
}

// DeleteExpiredSessions removes all sessions expired at now.
func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM oauth_sessions WHERE expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type userRow struct {
	ID          uuid.UUID `db:"id"`
	Provider    string    `db:"provider"`
	ProviderID  string    `db:"provider_id"`
	DisplayName string    `db:"display_name"`
	Email       string    `db:"email"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *userRow) toUser() *User {
	return &User{
		ID:          r.ID.String(),
		Provider:    r.Provider,
		ProviderID:  r.ProviderID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Role:        r.Role,
		CreatedAt:   r.CreatedAt,
	}
}

type sessionRow struct {
	ID         uuid.UUID `db:"id"`
	Provider   string    `db:"provider"`
	State      string    `db:"state"`
	RedirectTo string    `db:"redirect_to"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
}

func (r *sessionRow) toSession() *HandoffSession {
	return &HandoffSession{
		ID:         r.ID.String(),
		Provider:   r.Provider,
		State:      r.State,
		RedirectTo: r.RedirectTo,
		CreatedAt:  r.CreatedAt,
		ExpiresAt:  r.ExpiresAt,
	}
}

var (
	_ UserRepository = (*PostgresRepository)(nil)
	_ SessionStore   = (*PostgresRepository)(nil)
)
