package contacts

import (
	"context"
	"errors"
	"time"

	"contactbook/internal/validate"
)

// ErrNotFound is returned when a contact cannot be located.
var ErrNotFound = errors.New("contact not found")

// ErrInvalidID is returned for ids the backing store cannot address.
var ErrInvalidID = errors.New("invalid contact id")

// ErrValidation is returned when input validation fails.
var ErrValidation = errors.New("validation error")

// ValidationError lists every rejected field so callers can distinguish
// client errors from internal failures.
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

// Contact is one entry in the address book.
type Contact struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	FavoriteColor string    `json:"favoriteColor"`
	Birthday      time.Time `json:"birthday"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateContactInput is the payload for creating a contact. Birthday is an
// ISO-8601 date string.
type CreateContactInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
	Birthday      string `json:"birthday"`
}

// UpdateContactInput carries a partial update; nil fields are left unchanged.
type UpdateContactInput struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Email         *string `json:"email"`
	FavoriteColor *string `json:"favoriteColor"`
	Birthday      *string `json:"birthday"`
}

// Repository is the document-store view of the contacts collection.
type Repository interface {
	Find(ctx context.Context) ([]Contact, error)
	FindByID(ctx context.Context, id string) (Contact, error)
	// Create stores contact under a store-assigned id.
	Create(ctx context.Context, contact Contact) (Contact, error)
	UpdateByID(ctx context.Context, id string, contact Contact) (Contact, error)
	DeleteByID(ctx context.Context, id string) error
}
