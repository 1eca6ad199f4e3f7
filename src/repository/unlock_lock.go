package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReleaseFunc gives a held day lock back
type ReleaseFunc func(ctx context.Context) error

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UnlockLockRepository serializes unlock attempts per day across instances through Redis
type UnlockLockRepository struct {
	redis         *redis.Client
	prefix        string
	ttl           time.Duration
	wait          time.Duration
	retryInterval time.Duration
}

func NewUnlockLockRepository(redis *redis.Client, prefix string, ttl, wait time.Duration) *UnlockLockRepository {
	return &UnlockLockRepository{
		redis:         redis,
		prefix:        prefix,
		ttl:           ttl,
		wait:          wait,
		retryInterval: 100 * time.Millisecond,
	}
}

func (r *UnlockLockRepository) key(day int) string {
	return fmt.Sprintf("%s:unlock:%d", r.prefix, day)
}

// Acquire blocks until the lock for day is held, the wait elapses
// (domain.ErrUnlockInProgress) or ctx is done.
func (r *UnlockLockRepository) Acquire(ctx context.Context, day int) (ReleaseFunc, error) {
	key := r.key(day)
	token := uuid.NewString()

	deadline := time.NewTimer(r.wait)
	defer deadline.Stop()
	ticker := time.NewTicker(r.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.redis.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire unlock lock for day %d: %w", day, err)
		}
		if ok {
			return func(ctx context.Context) error {
				if err := releaseScript.Run(ctx, r.redis, []string{key}, token).Err(); err != nil {
					return fmt.Errorf("failed to release unlock lock for day %d: %w", day, err)
				}
				return nil
			}, nil
		}

		zerolog.Ctx(ctx).Debug().Int("day", day).Msg("unlock lock busy, waiting")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, domain.ErrUnlockInProgress
		case <-ticker.C:
		}
	}
}

// LocalUnlockLock is the single-process fallback used when Redis is not configured
type LocalUnlockLock struct {
	mu    sync.Mutex
	slots map[int]chan struct{}
	wait  time.Duration
}

func NewLocalUnlockLock(wait time.Duration) *LocalUnlockLock {
	return &LocalUnlockLock{
		slots: make(map[int]chan struct{}),
		wait:  wait,
	}
}

func (l *LocalUnlockLock) slot(day int) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[day]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[day] = ch
	}
	return ch
}

func (l *LocalUnlockLock) Acquire(ctx context.Context, day int) (ReleaseFunc, error) {
	ch := l.slot(day)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, domain.ErrUnlockInProgress
	}
}
