package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const (
	defaultLockLease = 10 * time.Second
	lockRetryEvery   = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token, so a
// holder whose lease expired cannot drop someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance Redis lock taken with SET NX PX. Acquire polls
// until the lock is free or the wait budget runs out.
type Locker struct {
	client *redis.Client
	lease  time.Duration
	wait   time.Duration
}

func NewLocker(client *redis.Client, wait time.Duration) *Locker {
	return &Locker{client: client, lease: defaultLockLease, wait: wait}
}

func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrLockNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		if !time.Now().Add(lockRetryEvery).Before(deadline) {
			return nil, domain.ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrLockNotAcquired, ctx.Err())
		case <-time.After(lockRetryEvery):
		}
	}
}

func (l *Locker) releaser(key, token string) func(context.Context) error {
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
}
