package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"enroll/internal/registration/models"
	"enroll/internal/registration/store"
	"enroll/pkg/platform/sentinel"
)

// checkUniqueness issues the three identity lookups concurrently and collects
// every conflict found. It never short-circuits on the first hit: one round
// trip reports all taken attributes so the caller doesn't discover them one
// retry at a time. A non-nil error means a lookup itself failed.
func (s *Service) checkUniqueness(ctx context.Context, username, email, phone string) (map[string]string, error) {
	var mu sync.Mutex
	conflicts := make(map[string]string)

	lookups := []struct {
		field string
		value string
		find  func(context.Context, string) (*models.User, error)
	}{
		{"username", username, s.users.FindByUsername},
		{"email", email, s.users.FindByEmail},
		{"phone", phone, s.users.FindByPhone},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, lookup := range lookups {
		g.Go(func() error {
			_, err := lookup.find(gctx, lookup.value)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("lookup %s: %w", lookup.field, err)
			}
			mu.Lock()
			conflicts[lookup.field] = store.ConflictMessage(lookup.field)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return conflicts, nil
}
