package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps failure counters and lock markers in Redis. INCR gives
// the atomic counter the policy requires; the lock key carries a TTL equal
// to the lock duration, so lapsed locks vanish without a timer.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore under the given key prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) failKey(accountID string) string {
	return s.prefix + ":lf:" + accountID
}

func (s *RedisStore) lockKey(accountID string) string {
	return s.prefix + ":lu:" + accountID
}

// IncrFailures atomically bumps the counter. The counter has no TTL: it is
// cleared only by a successful authentication, so a lock that lapses leaves
// the count high and the next failure re-locks immediately.
func (s *RedisStore) IncrFailures(ctx context.Context, accountID string) (int, error) {
	count, err := s.redis.Incr(ctx, s.failKey(accountID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(count), nil
}

func (s *RedisStore) Failures(ctx context.Context, accountID string) (int, error) {
	count, err := s.redis.Get(ctx, s.failKey(accountID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(count), nil
}

func (s *RedisStore) ClearFailures(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.failKey(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Lock(ctx context.Context, accountID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	value := strconv.FormatInt(until.Unix(), 10)
	if err := s.redis.Set(ctx, s.lockKey(accountID), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) LockedUntil(ctx context.Context, accountID string) (time.Time, error) {
	value, err := s.redis.Get(ctx, s.lockKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.Unix(unix, 0), nil
}

func (s *RedisStore) Unlock(ctx context.Context, accountID string) error {
	if err := s.redis.Del(ctx, s.lockKey(accountID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
