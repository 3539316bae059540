package notes

import (
	"context"
	"errors"
	"time"

	"contactbook/internal/validate"
)

// ErrNotFound is returned when a note cannot be located.
var ErrNotFound = errors.New("note not found")

// ErrInvalidID is returned for ids the backing store cannot address.
var ErrInvalidID = errors.New("invalid note id")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError lists every rejected field.
type ValidationError struct {
	Problems validate.Problems
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Problems.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields returns the rejected fields.
func (e *ValidationError) Fields() []validate.FieldError {
	return e.Problems
}

// Priority ranks how urgent a note is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Note is a free-form note with optional due date.
type Note struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Tags        []string   `json:"tags"`
	IsImportant bool       `json:"isImportant"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateNoteInput is the payload for creating a note. Title, content and
// author are required; the rest fall back to defaults.
type CreateNoteInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	IsImportant *bool    `json:"isImportant"`
	DueDate     *string  `json:"dueDate"`
	Priority    *string  `json:"priority"`
}

// UpdateNoteInput carries a partial update; nil fields are left unchanged.
type UpdateNoteInput struct {
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Author      *string   `json:"author"`
	Tags        *[]string `json:"tags"`
	IsImportant *bool     `json:"isImportant"`
	DueDate     *string   `json:"dueDate"`
	Priority    *string   `json:"priority"`
}

// Repository is the document-store view of the notes collection.
type Repository interface {
	Find(ctx context.Context) ([]Note, error)
	FindByID(ctx context.Context, id string) (Note, error)
	Create(ctx context.Context, note Note) (Note, error)
	UpdateByID(ctx context.Context, id string, note Note) (Note, error)
	DeleteByID(ctx context.Context, id string) error
}
