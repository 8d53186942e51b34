package memory

import (
	"context"
	"sync"
	"time"

	"curvefund/internal/domain"
	"curvefund/internal/lifecycle"
	"curvefund/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by user id
	now  func() time.Time
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Create inserts a new user.
func (s *UserStore) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if err := storage.ValidateUser(u); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.ID]; exists {
		return nil, storage.ErrDuplicateKey
	}

	ts := lifecycle.Create(s.now())
	stored := *u
	stored.CreatedAt = ts.CreatedAt
	stored.UpdatedAt = ts.UpdatedAt
	stored.DeletedAt = nil
	s.data[u.ID] = &stored

	result := stored
	return &result, nil
}

// GetByID retrieves an active user.
func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[id]
	if !exists || !lifecycle.Active(u.DeletedAt) {
		return nil, storage.ErrNotFound
	}

	result := *u
	return &result, nil
}
