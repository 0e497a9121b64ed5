package lock

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/vvangelov/brregservice/internal/logging"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const keyPrefix = "brreg:lock:"

var (
	ErrNotConfigured = errors.New("lock client not configured")
	ErrNotAcquired   = errors.New("lock not acquired")
)

// RedisLocker serializes callers per key across processes. A lock expires after ttl
// even if its holder never releases it.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if client == nil {
		return nil
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
		wait:   ttl,
	}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, ErrNotConfigured
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if l.ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{keyPrefix + key}, token).Err()
}

// Lock polls TryLock with exponential backoff until the lock is held, ctx ends, or
// the lock ttl has elapsed.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l == nil || l.client == nil {
		return nil, ErrNotConfigured
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = l.wait

	var token string
	op := func() error {
		t, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return ErrNotAcquired
		}
		token = t
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.Release(rctx, key, token); err != nil {
			logging.Error(ctx, err, logging.Data{"key": key}, "failed to release lock")
		}
	}, nil
}
