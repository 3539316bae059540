package contacts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository persists contacts inside PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wires a repository around the provided database handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = `id, first_name, last_name, email, favorite_color, birthday, created_at, updated_at`

type contactRow struct {
	ID            uuid.UUID `db:"id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	FavoriteColor string    `db:"favorite_color"`
	Birthday      time.Time `db:"birthday"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r contactRow) toContact() Contact {
	return Contact{
		ID:            r.ID.String(),
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		FavoriteColor: r.FavoriteColor,
		Birthday:      r.Birthday.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

// Find returns all contacts ordered by creation time.
func (r *PostgresRepository) Find(ctx context.Context) ([]Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at ASC, id ASC`

	var rows []contactRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toContact())
	}
	return contacts, nil
}

// FindByID fetches a single contact.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Contact, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Contact{}, ErrInvalidID
	}

	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	var row contactRow
	if err := r.db.GetContext(ctx, &row, query, parsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return row.toContact(), nil
}

// Create inserts a new contact record.
func (r *PostgresRepository) Create(ctx context.Context, contact Contact) (Contact, error) {
	const query = `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES (:id, :first_name, :last_name, :email, :favorite_color, :birthday, :created_at, :updated_at)
	`

	row := toContactRow(uuid.New(), contact)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return Contact{}, err
	}
	return row.toContact(), nil
}

// UpdateByID overwrites the mutable fields of an existing contact.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, contact Contact) (Contact, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Contact{}, ErrInvalidID
	}

	const query = `
		UPDATE contacts
		SET first_name = $2, last_name = $3, email = $4, favorite_color = $5, birthday = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + contactColumns

	var row contactRow
	err = r.db.GetContext(ctx, &row, query,
		parsed,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.FavoriteColor,
		contact.Birthday,
		contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return row.toContact(), nil
}

// DeleteByID removes a contact.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, parsed)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func toContactRow(id uuid.UUID, c Contact) contactRow {
	return contactRow{
		ID:            id,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		FavoriteColor: c.FavoriteColor,
		Birthday:      c.Birthday,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

var _ Repository = (*PostgresRepository)(nil)
