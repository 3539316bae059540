package notes

import (
	"context"
	"strings"
	"time"

	"contactbook/internal/validate"
)

// Service orchestrates validation and persistence for notes.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a Service with the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every note.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.Find(ctx)
}

// Get retrieves a note by ID.
func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and persists a new note.
func (s *Service) Create(ctx context.Context, input CreateNoteInput) (Note, error) {
	var problems validate.Problems
	note := Note{
		Title:    problems.Required("title", input.Title),
		Content:  problems.Required("content", input.Content),
		Author:   problems.Required("author", input.Author),
		Tags:     normalizeTags(input.Tags),
		Priority: PriorityMedium,
	}
	if input.IsImportant != nil {
		note.IsImportant = *input.IsImportant
	}
	if input.DueDate != nil {
		due := problems.Timestamp("dueDate", *input.DueDate)
		note.DueDate = &due
	}
	if input.Priority != nil {
		note.Priority = parsePriority(&problems, *input.Priority)
	}
	if !problems.Empty() {
		return Note{}, &ValidationError{Problems: problems}
	}

	now := s.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	return s.repo.Create(ctx, note)
}

// Update applies the fields present in input.
func (s *Service) Update(ctx context.Context, id string, input UpdateNoteInput) (Note, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Note{}, err
	}

	var problems validate.Problems
	if input.Title != nil {
		existing.Title = problems.Required("title", *input.Title)
	}
	if input.Content != nil {
		existing.Content = problems.Required("content", *input.Content)
	}
	if input.Author != nil {
		existing.Author = problems.Required("author", *input.Author)
	}
	if input.Tags != nil {
		existing.Tags = normalizeTags(*input.Tags)
	}
	if input.IsImportant != nil {
		existing.IsImportant = *input.IsImportant
	}
	if input.DueDate != nil {
		due := problems.Timestamp("dueDate", *input.DueDate)
		existing.DueDate = &due
	}
	if input.Priority != nil {
		existing.Priority = parsePriority(&problems, *input.Priority)
	}
	if !problems.Empty() {
		return Note{}, &ValidationError{Problems: problems}
	}

	existing.UpdatedAt = s.now().UTC()
	return s.repo.UpdateByID(ctx, id, existing)
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func parsePriority(problems *validate.Problems, value string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		problems.Add("priority", "priority must be one of low, medium, high")
	}
	return p
}

// normalizeTags trims tags and drops blanks. The result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
