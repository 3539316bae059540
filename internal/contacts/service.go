package contacts

import (
	"context"
	"time"

	"contactbook/internal/validate"
)

// Service orchestrates validation and persistence for contacts.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every contact.
func (s *Service) List(ctx context.Context) ([]Contact, error) {
	return s.repo.Find(ctx)
}

// Get retrieves a contact by ID.
func (s *Service) Get(ctx context.Context, id string) (Contact, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and persists a new contact. All five fields are required.
func (s *Service) Create(ctx context.Context, input CreateContactInput) (Contact, error) {
	var problems validate.Problems
	contact := Contact{
		FirstName:     problems.Required("firstName", input.FirstName),
		LastName:      problems.Required("lastName", input.LastName),
		Email:         problems.Email("email", input.Email),
		FavoriteColor: problems.Required("favoriteColor", input.FavoriteColor),
		Birthday:      problems.Timestamp("birthday", input.Birthday),
	}
	if !problems.Empty() {
		return Contact{}, &ValidationError{Problems: problems}
	}

	now := s.now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return s.repo.Create(ctx, contact)
}

// Update applies the fields present in input. Present fields obey the same
// rules as on create.
func (s *Service) Update(ctx context.Context, id string, input UpdateContactInput) (Contact, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Contact{}, err
	}

	var problems validate.Problems
	if input.FirstName != nil {
		existing.FirstName = problems.Required("firstName", *input.FirstName)
	}
	if input.LastName != nil {
		existing.LastName = problems.Required("lastName", *input.LastName)
	}
	if input.Email != nil {
		existing.Email = problems.Email("email", *input.Email)
	}
	if input.FavoriteColor != nil {
		existing.FavoriteColor = problems.Required("favoriteColor", *input.FavoriteColor)
	}
	if input.Birthday != nil {
		existing.Birthday = problems.Timestamp("birthday", *input.Birthday)
	}
	if !problems.Empty() {
		return Contact{}, &ValidationError{Problems: problems}
	}

	existing.UpdatedAt = s.now().UTC()
	return s.repo.UpdateByID(ctx, id, existing)
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
