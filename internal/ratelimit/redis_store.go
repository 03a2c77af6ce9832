package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 250 * time.Millisecond

// RedisStore keeps windows as expiring Redis counters (INCR + PEXPIRE).
type RedisStore struct {
	client  redis.Cmdable
	prefix  string
	timeout time.Duration
}

// NewRedisStore constructs a store that namespaces keys with prefix.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "todo:ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, timeout: defaultRedisTimeout}
}

// Hit implements WindowStore.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	redisKey := s.prefix + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if ttl < 0 {
		// The key lost its expiry (e.g. PEXPIRE failed on an earlier hit).
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}
