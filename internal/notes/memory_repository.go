package notes

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores notes in an in-process map.
type InMemoryRepository struct {
	mu    sync.RWMutex
	data  map[string]Note
	order []string
}

// NewInMemoryRepository constructs a repository seeded with optional initial notes.
func NewInMemoryRepository(initial []Note) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string]Note, len(initial))}
	for _, note := range initial {
		if note.ID == "" {
			note.ID = uuid.NewString()
		}
		r.data[note.ID] = clone(note)
		r.order = append(r.order, note.ID)
	}
	return r
}

// clone copies the slice and pointer fields so callers cannot mutate stored notes.
func clone(n Note) Note {
	n.Tags = slices.Clone(n.Tags)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.DueDate != nil {
		due := *n.DueDate
		n.DueDate = &due
	}
	return n
}

func normalizeID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

// Find returns all notes in insertion order.
func (r *InMemoryRepository) Find(_ context.Context) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]Note, 0, len(r.order))
	for _, id := range r.order {
		if note, ok := r.data[id]; ok {
			notes = append(notes, clone(note))
		}
	}
	return notes, nil
}

// FindByID returns a note by ID.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Note, error) {
	key, err := normalizeID(id)
	if err != nil {
		return Note{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.data[key]
	if !ok {
		return Note{}, ErrNotFound
	}
	return clone(note), nil
}

// Create stores a new note under a fresh id.
func (r *InMemoryRepository) Create(_ context.Context, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note.ID = uuid.NewString()
	r.data[note.ID] = clone(note)
	r.order = append(r.order, note.ID)
	return clone(note), nil
}

// UpdateByID replaces an existing note.
func (r *InMemoryRepository) UpdateByID(_ context.Context, id string, note Note) (Note, error) {
	key, err := normalizeID(id)
	if err != nil {
		return Note{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[key]; !ok {
		return Note{}, ErrNotFound
	}
	note.ID = key
	r.data[key] = clone(note)
	return clone(note), nil
}

// DeleteByID removes a note by ID.
func (r *InMemoryRepository) DeleteByID(_ context.Context, id string) error {
	key, err := normalizeID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[key]; !ok {
		return ErrNotFound
	}
	delete(r.data, key)
	r.order = slices.DeleteFunc(r.order, func(existing string) bool { return existing == key })
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
