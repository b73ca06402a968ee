// Package dedupe claims change-event request ids so each login attempt is
// prompted at most once across every running replica.
package dedupe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "loginguard/pkg/domain"
	"loginguard/pkg/platform/clock"
)

const keyPrefix = "loginguard:request:"

// RedisDeduper stores claimed request ids in Redis so all instances share one
// view of what has been processed.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func key(requestID id.RequestID) string {
	return keyPrefix + requestID.String()
}

// Claim records requestID if nobody has yet. It returns true when the id was
// newly recorded.
func (r *RedisDeduper) Claim(ctx context.Context, requestID id.RequestID) (bool, error) {
	ok, err := r.client.SetNX(ctx, key(requestID), 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim request %s: %w", requestID, err)
	}
	return ok, nil
}

// Release forgets a claim so the request may be processed again.
func (r *RedisDeduper) Release(ctx context.Context, requestID id.RequestID) error {
	return r.client.Del(ctx, key(requestID)).Err()
}

// MemoryDeduper is the single-process fallback used when Redis is not configured.
type MemoryDeduper struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	claimed map[id.RequestID]time.Time
}

func NewMemoryDeduper(ttl time.Duration, clk clock.Clock) *MemoryDeduper {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryDeduper{ttl: ttl, clock: clk, claimed: make(map[id.RequestID]time.Time)}
}

func (m *MemoryDeduper) Claim(_ context.Context, requestID id.RequestID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.evict(now)
	if _, ok := m.claimed[requestID]; ok {
		return false, nil
	}
	m.claimed[requestID] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryDeduper) Release(_ context.Context, requestID id.RequestID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, requestID)
	return nil
}

// evict drops expired claims; a non-positive ttl keeps claims forever.
func (m *MemoryDeduper) evict(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for rid, expires := range m.claimed {
		if !now.Before(expires) {
			delete(m.claimed, rid)
		}
	}
}
