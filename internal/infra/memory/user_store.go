package memory

import (
	"context"
	"sync"

	"quizhub-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore. The mutex
// makes Update an atomic read-modify-write per record.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Get(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return domain.ErrAlreadyRegistered
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *UserStore) Update(_ context.Context, id string, mutate func(*domain.User) error) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	updated := copyUser(user)
	if err := mutate(&updated); err != nil {
		return domain.User{}, err
	}
	s.users[id] = copyUser(updated)
	return updated, nil
}

func (s *UserStore) All(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, copyUser(user))
	}
	return users, nil
}

// copyUser detaches the score map so callers cannot alias stored state.
func copyUser(u domain.User) domain.User {
	scores := make(map[string]domain.Score, len(u.ScoresByPool))
	for name, score := range u.ScoresByPool {
		scores[name] = score
	}
	u.ScoresByPool = scores
	return u
}
