package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/sentinel"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	locks := NewKeyed()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(context.Background(), "U123")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locks.size(), "entries are removed once unused")
}

func TestKeyed_DifferentKeysDoNotBlock(t *testing.T) {
	locks := NewKeyed()
	releaseA, err := locks.Acquire(context.Background(), "A")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := locks.Acquire(ctx, "B")
	require.NoError(t, err)
	releaseB()
}

func TestKeyed_AcquireHonoursContext(t *testing.T) {
	locks := NewKeyed()
	release, err := locks.Acquire(context.Background(), "U1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, "U1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()
	assert.Equal(t, 0, locks.size())
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err, "start miniredis")
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, client
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	m, client := newRedis(t)
	locker := NewRedisLocker(client, WithTTL(5*time.Second))

	release, err := locker.Acquire(context.Background(), "U123")
	require.NoError(t, err)
	assert.True(t, m.Exists("loginguard:lock:U123"))
	assert.Equal(t, 5*time.Second, m.TTL("loginguard:lock:U123"))

	release()
	assert.False(t, m.Exists("loginguard:lock:U123"))
}

func TestRedisLocker_BusyKeyTimesOut(t *testing.T) {
	_, client := newRedis(t)
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	locker := NewRedisLocker(client,
		WithClock(clk),
		WithRetryDelay(time.Second),
		WithAcquireLimit(5*time.Second),
	)

	release, err := locker.Acquire(context.Background(), "U1")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(context.Background(), "U1")
	assert.ErrorIs(t, err, sentinel.ErrLockTimeout)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second, time.Second}, clk.Sleeps())
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	_, client := newRedis(t)
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	locker := NewRedisLocker(client, WithClock(clk), WithRetryDelay(50*time.Millisecond))

	release, err := locker.Acquire(context.Background(), "U1")
	require.NoError(t, err)
	clk.OnSleep(func(time.Duration) {
		if len(clk.Sleeps()) == 3 {
			release()
		}
	})

	second, err := locker.Acquire(context.Background(), "U1")
	require.NoError(t, err)
	second()
	assert.Len(t, clk.Sleeps(), 3, "retried at the configured delay until the holder released")
}

func TestRedisLocker_AcquireHonoursContext(t *testing.T) {
	_, client := newRedis(t)
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	locker := NewRedisLocker(client, WithClock(clk))

	release, err := locker.Acquire(context.Background(), "U1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	clk.OnSleep(func(time.Duration) { cancel() })

	_, err = locker.Acquire(ctx, "U1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, clk.Sleeps(), 1)
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	m, client := newRedis(t)
	locker := NewRedisLocker(client)

	release, err := locker.Acquire(context.Background(), "U1")
	require.NoError(t, err)

	// Simulate expiry followed by another replica taking the lock.
	require.NoError(t, m.Set("loginguard:lock:U1", "someone-else"))
	release()

	got, err := m.Get("loginguard:lock:U1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
