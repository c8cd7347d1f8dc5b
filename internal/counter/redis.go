package counter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/redis"
)

type redisCommands interface {
	Get(ctx context.Context, key string) (string, error)
	IncrWithExpireAt(ctx context.Context, key string, expireAt time.Time) (int64, error)
	TryConsume(ctx context.Context, key string, limit int64, expireAt time.Time) (bool, int64, error)
}

// RedisStore backs counters with Redis, delegating expiry to the server. This
// is the backend for multi-instance deployments; TryConsume runs as a single
// server-side script so concurrent requests cannot over-admit.
type RedisStore struct {
	client redisCommands
}

// NewRedisStore wraps the shared redis client as a counter backend.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	return s.client.IncrWithExpireAt(ctx, key, expireAt)
}

func (s *RedisStore) TryConsume(ctx context.Context, key string, limit int64, expireAt time.Time) (bool, int64, error) {
	return s.client.TryConsume(ctx, key, limit, expireAt)
}
