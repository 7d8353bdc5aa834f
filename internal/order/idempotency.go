package order

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore guards a keyed operation so it runs at most once at a time
// and remembers its result.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// DefaultLockTTL bounds how long a crashed holder can block a key.
const DefaultLockTTL = 30 * time.Second

type RedisIdempotencyStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
	ttl     time.Duration
}

// NewRedisIdempotencyStore keeps locks for lockTTL and remembered results for
// ttl. A non-positive lockTTL means DefaultLockTTL.
func NewRedisIdempotencyStore(rdb *redis.Client, lockTTL, ttl time.Duration) *RedisIdempotencyStore {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RedisIdempotencyStore{rdb: rdb, lockTTL: lockTTL, ttl: ttl}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idemp:"+scope+":"+key, "1", s.lockTTL).Result()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, "idemp:"+scope+":"+key).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "idemp:map:"+scope+":"+key, value, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "idemp:map:"+scope+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
