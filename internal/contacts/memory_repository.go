package contacts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores contacts in an in-process map, ideal for local development or tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	data  map[string]Contact
	order []string
}

// NewInMemoryRepository constructs a repository seeded with optional initial contacts.
// Seed entries without an id are given one.
func NewInMemoryRepository(initial []Contact) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string]Contact, len(initial))}
	for _, contact := range initial {
		if contact.ID == "" {
			contact.ID = uuid.NewString()
		}
		r.data[contact.ID] = contact
		r.order = append(r.order, contact.ID)
	}
	return r
}

func normalizeID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

// Find returns all stored contacts in insertion order.
func (r *InMemoryRepository) Find(_ context.Context) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contacts := make([]Contact, 0, len(r.order))
	for _, id := range r.order {
		if contact, ok := r.data[id]; ok {
			contacts = append(contacts, contact)
		}
	}
	return contacts, nil
}

// FindByID returns a contact by ID.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Contact, error) {
	key, err := normalizeID(id)
	if err != nil {
		return Contact{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.data[key]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return contact, nil
}

// Create stores a new contact under a fresh id.
func (r *InMemoryRepository) Create(_ context.Context, contact Contact) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contact.ID = uuid.NewString()
	r.data[contact.ID] = contact
	r.order = append(r.order, contact.ID)
	return contact, nil
}

// UpdateByID replaces an existing contact.
func (r *InMemoryRepository) UpdateByID(_ context.Context, id string, contact Contact) (Contact, error) {
	key, err := normalizeID(id)
	if err != nil {
		return Contact{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[key]; !ok {
		return Contact{}, ErrNotFound
	}
	contact.ID = key
	r.data[key] = contact
	return contact, nil
}

// DeleteByID removes a contact by ID.
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
	for i, existing := range r.order {
		if existing == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
