package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/model"
)

var _ model.UserStore = (*UserStore)(nil)

// UserStore keeps accounts in memory. Deleted accounts stay in the map with
// DeletedAt set and are invisible to lookups, as in the postgres store.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
	now   func() time.Time
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]model.User),
		now:   time.Now,
	}
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.DeletedAt == nil && u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.DeletedAt == nil && u.Email == user.Email {
			return model.User{}, model.ErrEmailTaken
		}
	}
	if _, exists := s.users[user.ID]; exists {
		return model.User{}, model.ErrEmailTaken
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return model.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *UserStore) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return model.ErrNotFound
	}
	for otherID, other := range s.users {
		if otherID != id && other.DeletedAt == nil && other.Email == email {
			return model.ErrEmailTaken
		}
	}
	u.Email = email
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *UserStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return model.ErrNotFound
	}
	now := s.now()
	u.DeletedAt = &now
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}
