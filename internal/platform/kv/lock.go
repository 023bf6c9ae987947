package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prep_tracker/internal/common"
	"prep_tracker/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker hands out exclusive, expiring locks keyed by name.
type Locker interface {
	// Acquire returns common.ErrSyncInProgress when key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

type RedisLocker struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisLocker(rdb *redis.Client, log *logger.Logger) *RedisLocker {
	return &RedisLocker{rdb: rdb, log: log.With("component", "RedisLocker")}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lockValue := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %v: %w", key, err, common.ErrServiceUnavailable)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: %w", key, common.ErrSyncInProgress)
	}

	return func() {
		// The caller's ctx may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, lockValue).Int64()
		if err != nil {
			l.log.Error("failed to release lock", "key", key, "error", err)
		} else if deleted != 1 {
			l.log.Warn("lock expired or taken over before release", "key", key)
		}
	}, nil
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]string
	timer map[string]*time.Timer
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]string{}, timer: map[string]*time.Timer{}}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, fmt.Errorf("lock %s: %w", key, common.ErrSyncInProgress)
	}
	lockValue := uuid.NewString()
	l.held[key] = lockValue
	if ttl > 0 {
		l.timer[key] = time.AfterFunc(ttl, func() { l.releaseIf(key, lockValue) })
	}
	return func() { l.releaseIf(key, lockValue) }, nil
}

func (l *LocalLocker) releaseIf(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != value {
		return
	}
	delete(l.held, key)
	if t, ok := l.timer[key]; ok {
		t.Stop()
		delete(l.timer, key)
	}
}
