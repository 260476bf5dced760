package store

import (
	"context"
	"fmt"
	"sync"

	"enroll/internal/registration/models"
	"enroll/pkg/platform/sentinel"
)

// InMemory stores users in memory for tests and development. One mutex
// guards all three indexes, so Create checks and claims username, email and
// phone atomically.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
	byPhone    map[string]*models.User
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
		byEmail:    make(map[string]*models.User),
		byPhone:    make(map[string]*models.User),
	}
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byID[id]; ok {
		return copyUser(user), nil
	}
	return nil, fmt.Errorf("user by id: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byUsername[username]; ok {
		return copyUser(user), nil
	}
	return nil, fmt.Errorf("user by username: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byEmail[email]; ok {
		return copyUser(user), nil
	}
	return nil, fmt.Errorf("user by email: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byPhone[phone]; ok {
		return copyUser(user), nil
	}
	return nil, fmt.Errorf("user by phone: %w", sentinel.ErrNotFound)
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conflict := &ConflictError{}
	if _, taken := s.byUsername[user.Username]; taken {
		conflict.Fields = append(conflict.Fields, "username")
	}
	if _, taken := s.byEmail[user.Email]; taken {
		conflict.Fields = append(conflict.Fields, "email")
	}
	if _, taken := s.byPhone[user.Phone]; taken {
		conflict.Fields = append(conflict.Fields, "phone")
	}
	if len(conflict.Fields) > 0 {
		return conflict
	}

	stored := copyUser(user)
	s.byID[stored.ID] = stored
	s.byUsername[stored.Username] = stored
	s.byEmail[stored.Email] = stored
	s.byPhone[stored.Phone] = stored
	return nil
}

func copyUser(user *models.User) *models.User {
	c := *user
	return &c
}
