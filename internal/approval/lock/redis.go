package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/sentinel"
	"loginguard/pkg/platform/wait"
	"loginguard/pkg/requestcontext"
)

const (
	redisKeyPrefix      = "loginguard:lock:"
	defaultLockTTL      = 10 * time.Second
	defaultRetryDelay   = 50 * time.Millisecond
	defaultAcquireLimit = 30 * time.Second
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock shared by every replica. The TTL bounds how
// long a crashed holder can block others.
type RedisLocker struct {
	client       *redis.Client
	ttl          time.Duration
	retryDelay   time.Duration
	acquireLimit time.Duration
	clock        clock.Clock
	logger       *slog.Logger
}

type RedisOption func(*RedisLocker)

func WithTTL(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

func WithRetryDelay(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retryDelay = d
		}
	}
}

// WithAcquireLimit bounds how long Acquire waits for a busy key.
func WithAcquireLimit(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.acquireLimit = d
		}
	}
}

func WithClock(c clock.Clock) RedisOption {
	return func(l *RedisLocker) {
		if c != nil {
			l.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(l *RedisLocker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewRedisLocker(client *redis.Client, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:       client,
		ttl:          defaultLockTTL,
		retryDelay:   defaultRetryDelay,
		acquireLimit: defaultAcquireLimit,
		clock:        clock.Real(),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire polls SET NX until the key is free. It returns sentinel.ErrLockTimeout
// when the acquire limit passes first.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()
	deadline := l.clock.Now().Add(l.acquireLimit)

	acquired, err := wait.Until(ctx, l.clock, l.retryDelay, deadline, func(ctx context.Context) (bool, error) {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("acquire lock %s: %w", key, sentinel.ErrLockTimeout)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// Release must run even if the caller's context was cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.WarnContext(ctx, "failed to release identity lock",
				append([]any{"key", key, "error", err}, requestcontext.LogAttrs(ctx)...)...)
		}
	}, nil
}
