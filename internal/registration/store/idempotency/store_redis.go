package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"enroll/internal/registration/models"
	"enroll/pkg/platform/sentinel"
)

// Redis key prefix for replayable registration results.
const replayKeyPrefix = "idem:register:"

// Redis is the production replay store for multi-instance deployments where
// a retried request can land on a different instance.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed replay store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Get(ctx context.Context, key string) (*models.RegistrationResult, error) {
	payload, err := s.client.Get(ctx, replayKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("idempotency key: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	var result models.RegistrationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode idempotency payload: %w", err)
	}
	return &result, nil
}

func (s *Redis) Put(ctx context.Context, key string, result *models.RegistrationResult, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode idempotency payload: %w", err)
	}
	if err := s.client.Set(ctx, replayKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("put idempotency key: %w", err)
	}
	return nil
}
