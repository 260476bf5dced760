// Package idempotency stores completed registration results keyed by the
// caller's Idempotency-Key, so a retried request replays the original
// outcome instead of racing a second create. Entries are TTL-bounded; only
// successful registrations are recorded.
package idempotency

import (
	"context"
	"time"

	"enroll/internal/registration/models"
)

// Store maps idempotency keys to previously computed registration results.
// Get returns sentinel.ErrNotFound (wrapped) for unknown or expired keys.
type Store interface {
	Get(ctx context.Context, key string) (*models.RegistrationResult, error)
	Put(ctx context.Context, key string, result *models.RegistrationResult, ttl time.Duration) error
}
