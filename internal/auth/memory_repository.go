package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps users and handoff sessions in process memory. The
// identity index enforces the same uniqueness the persistent stores do.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]User
	identities map[string]string
	sessions   map[string]HandoffSession
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]User),
		identities: make(map[string]string),
		sessions:   make(map[string]HandoffSession),
	}
}

func identityKey(provider, providerID string) string {
	return provider + "\x00" + providerID
}

// FindUserByOAuth returns the user bound to the identity, if any.
func (r *MemoryRepository) FindUserByOAuth(_ context.Context, provider, providerID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.identities[identityKey(provider, providerID)]
	if !ok {
		return nil, nil
	}
	user := r.users[id]
	return &user, nil
}

// FindUserByID returns the user with the given id, if any.
func (r *MemoryRepository) FindUserByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// CreateUser stores user under a fresh id.
func (r *MemoryRepository) CreateUser(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(user.Provider, user.ProviderID)
	if _, exists := r.identities[key]; exists {
		return User{}, ErrDuplicateIdentity
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = user
	r.identities[key] = user.ID
	return user, nil
}

// CreateSession stores a handoff session.
func (r *MemoryRepository) CreateSession(_ context.Context, session HandoffSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// TakeSession removes and returns the session with the given id.
func (r *MemoryRepository) TakeSession(_ context.Context, id string) (*HandoffSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	delete(r.sessions, id)
	return &session, nil
}

// DeleteExpiredSessions removes every session expired at now.
func (r *MemoryRepository) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

var (
	_ UserRepository = (*MemoryRepository)(nil)
	_ SessionStore   = (*MemoryRepository)(nil)
)
