package dedupe

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginguard/pkg/platform/clock"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m, err := miniredis.Run()
	require.NoError(t, err, "start miniredis")
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return m, client
}

func TestRedisDeduper_ClaimOnce(t *testing.T) {
	m, client := newMiniredis(t)
	deduper := NewRedisDeduper(client, time.Minute)
	ctx := context.Background()

	first, err := deduper.Claim(ctx, 42)
	require.NoError(t, err)
	second, err := deduper.Claim(ctx, 42)
	require.NoError(t, err)
	other, err := deduper.Claim(ctx, 43)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "second claim of the same request must lose")
	assert.True(t, other)
	assert.True(t, m.Exists("loginguard:request:42"))
	assert.Equal(t, time.Minute, m.TTL("loginguard:request:42"))
}

func TestRedisDeduper_ExpiresAndReleases(t *testing.T) {
	m, client := newMiniredis(t)
	deduper := NewRedisDeduper(client, time.Minute)
	ctx := context.Background()

	_, err := deduper.Claim(ctx, 7)
	require.NoError(t, err)
	m.FastForward(2 * time.Minute)

	again, err := deduper.Claim(ctx, 7)
	require.NoError(t, err)
	assert.True(t, again, "claim is available after the ttl")

	require.NoError(t, deduper.Release(ctx, 7))
	afterRelease, err := deduper.Claim(ctx, 7)
	require.NoError(t, err)
	assert.True(t, afterRelease)
}

func TestRedisDeduper_ServerDown(t *testing.T) {
	m, client := newMiniredis(t)
	deduper := NewRedisDeduper(client, time.Minute)
	m.Close()

	_, err := deduper.Claim(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim request 1")
}

func TestMemoryDeduper(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	deduper := NewMemoryDeduper(time.Hour, clk)
	ctx := context.Background()

	t.Run("second claim loses", func(t *testing.T) {
		first, err := deduper.Claim(ctx, 1)
		require.NoError(t, err)
		second, err := deduper.Claim(ctx, 1)
		require.NoError(t, err)
		assert.True(t, first)
		assert.False(t, second)
	})

	t.Run("claim expires after ttl", func(t *testing.T) {
		clk.Advance(time.Hour)
		again, err := deduper.Claim(ctx, 1)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("release frees the claim", func(t *testing.T) {
		require.NoError(t, deduper.Release(ctx, 1))
		again, err := deduper.Claim(ctx, 1)
		require.NoError(t, err)
		assert.True(t, again)
	})
}
