package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = time.Hour

// IdempotencyStore maps submission keys to the request they created.
// Key format: idem:service-request:<key>
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup returns the request id recorded for key, or "" if none.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, error) {
	id, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, nil
}

// Remember records requestID for key (expires after idempotencyTTL).
// An existing mapping is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, key, requestID string) error {
	return s.client.SetNX(ctx, s.key(key), requestID, idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:service-request:" + k
}
