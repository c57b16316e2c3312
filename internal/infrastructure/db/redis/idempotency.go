package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which thought a client-supplied Idempotency-Key
// produced for an author, so a retried create returns the first result.
// Key format: idempotency:thought:<userId>:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore wraps the given client. A non-positive ttl falls back
// to 24 hours.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the thought id recorded for the author's key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records thoughtID under key unless another request got there
// first. It reports whether this call stored the value.
func (s *IdempotencyStore) Remember(ctx context.Context, userID, key, thoughtID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(userID, key), thoughtID, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency remember: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) key(userID, key string) string {
	return "idempotency:thought:" + userID + ":" + key
}
