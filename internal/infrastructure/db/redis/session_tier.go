package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTier is one storage lifetime for the client session record. Two
// tiers with different TTLs stand in for per-session and long-lived storage.
// Key format: careclient:<device>:<tier>:<key>
type SessionTier struct {
	client *redis.Client
	device string
	name   string
	ttl    time.Duration
}

// NewSessionTier creates a tier. A zero ttl stores records without expiry.
func NewSessionTier(client *redis.Client, device, name string, ttl time.Duration) *SessionTier {
	return &SessionTier{client: client, device: device, name: name, ttl: ttl}
}

func (t *SessionTier) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := t.client.Get(ctx, t.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session tier %s get: %w", t.name, err)
	}
	return v, true, nil
}

// Set stores value and refreshes the tier TTL.
func (t *SessionTier) Set(ctx context.Context, key, value string) error {
	if err := t.client.Set(ctx, t.key(key), value, t.ttl).Err(); err != nil {
		return fmt.Errorf("session tier %s set: %w", t.name, err)
	}
	return nil
}

func (t *SessionTier) Delete(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("session tier %s delete: %w", t.name, err)
	}
	return nil
}

func (t *SessionTier) key(k string) string {
	return fmt.Sprintf("careclient:%s:%s:%s", t.device, t.name, k)
}
