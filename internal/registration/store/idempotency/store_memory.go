package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"enroll/internal/registration/models"
	"enroll/pkg/platform/sentinel"
)

type memoryEntry struct {
	result    models.RegistrationResult
	expiresAt time.Time
}

// InMemory is a TTL map for tests and single-instance deployments.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewInMemory constructs an empty in-memory replay store.
func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the clock, for expiry tests.
func (s *InMemory) WithClock(now func() time.Time) *InMemory {
	s.now = now
	return s
}

func (s *InMemory) Get(_ context.Context, key string) (*models.RegistrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, fmt.Errorf("idempotency key: %w", sentinel.ErrNotFound)
	}
	result := entry.result
	return &result, nil
}

func (s *InMemory) Put(_ context.Context, key string, result *models.RegistrationResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		result:    *result,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}
