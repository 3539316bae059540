package notes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository persists notes inside PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wires a repository around the provided database handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const noteColumns = `id, title, content, author, tags, is_important, due_date, priority, created_at, updated_at`

type noteRow struct {
	ID          uuid.UUID      `db:"id"`
	Title       string         `db:"title"`
	Content     string         `db:"content"`
	Author      string         `db:"author"`
	Tags        pq.StringArray `db:"tags"`
	IsImportant bool           `db:"is_important"`
	DueDate     sql.NullTime   `db:"due_date"`
	Priority    string         `db:"priority"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r noteRow) toNote() Note {
	note := Note{
		ID:          r.ID.String(),
		Title:       r.Title,
		Content:     r.Content,
		Author:      r.Author,
		Tags:        []string(r.Tags),
		IsImportant: r.IsImportant,
		Priority:    Priority(r.Priority),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		note.DueDate = &due
	}
	return note
}

func toNoteRow(id uuid.UUID, n Note) noteRow {
	row := noteRow{
		ID:          id,
		Title:       n.Title,
		Content:     n.Content,
		Author:      n.Author,
		Tags:        pq.StringArray(n.Tags),
		IsImportant: n.IsImportant,
		Priority:    string(n.Priority),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}
	if n.DueDate != nil {
		row.DueDate = sql.NullTime{Time: *n.DueDate, Valid: true}
	}
	return row
}

// Find returns all notes ordered by creation time.
func (r *PostgresRepository) Find(ctx context.Context) ([]Note, error) {
	const query = `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at ASC, id ASC`

	var rows []noteRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, row.toNote())
	}
	return notes, nil
}

// FindByID fetches a single note.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Note, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Note{}, ErrInvalidID
	}

	const query = `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	var row noteRow
	if err := r.db.GetContext(ctx, &row, query, parsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	return row.toNote(), nil
}

// Create inserts a new note record.
func (r *PostgresRepository) Create(ctx context.Context, note Note) (Note, error) {
	const query = `
		INSERT INTO notes (` + noteColumns + `)
		VALUES (:id, :title, :content, :author, :tags, :is_important, :due_date, :priority, :created_at, :updated_at)
	`

	row := toNoteRow(uuid.New(), note)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return Note{}, err
	}
	return row.toNote(), nil
}

// UpdateByID overwrites the mutable fields of an existing note.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, note Note) (Note, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Note{}, ErrInvalidID
	}

	const query = `
		UPDATE notes
		SET title = $2, content = $3, author = $4, tags = $5, is_important = $6,
			due_date = $7, priority = $8, updated_at = $9
		WHERE id = $1
		RETURNING ` + noteColumns

	in := toNoteRow(parsed, note)
	var row noteRow
	err = r.db.GetContext(ctx, &row, query,
		in.ID,
		in.Title,
		in.Content,
		in.Author,
		in.Tags,
		in.IsImportant,
		in.DueDate,
		in.Priority,
		in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	return row.toNote(), nil
}

// DeleteByID removes a note.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, parsed)
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

var _ Repository = (*PostgresRepository)(nil)
