package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginguard/pkg/platform/clock"
	"loginguard/pkg/platform/sentinel"
)

func TestInMemoryStore_Authentication(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := NewInMemoryStore(clk)

	require.NoError(t, store.AddPlayer(ctx, "123", "code"))
	require.NoError(t, store.LinkMinecraftName("123", "Steve"))
	requestID := store.AddRequest("Steve", "1.2.3.4")

	req, err := store.GetRequestContext(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, "Steve", req.SubjectAccount)

	identity, err := store.GetLinkedIdentity(ctx, "Steve")
	require.NoError(t, err)
	assert.Equal(t, "123", identity)

	ok, err := store.IsAuthenticated(ctx, "123", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.DeleteAuthentication(ctx, "123"), sentinel.ErrNotFound)
	require.NoError(t, store.InsertAuthentication(ctx, "123", requestID))
	assert.Error(t, store.InsertAuthentication(ctx, "123", requestID), "second insert must fail")

	ok, err = store.IsAuthenticated(ctx, "123", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.IsAuthenticated(ctx, "123", "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, ok, "authentication is bound to the origin address")

	clk.Advance(AuthenticationTTL)
	ok, err = store.IsAuthenticated(ctx, "123", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "authentication expires")
}

func TestInMemoryStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(nil)

	_, err := store.GetRequestContext(ctx, 99)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.GetLinkedIdentity(ctx, "Nobody")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.InsertAuthentication(ctx, "123", 99), sentinel.ErrNotFound)
	assert.ErrorIs(t, store.LinkMinecraftName("123", "Steve"), sentinel.ErrNotFound)
}

func TestInMemoryStore_Players(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(nil)

	registered, err := store.IsRegistered(ctx, "123")
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, store.AddPlayer(ctx, "123", "code"))
	assert.Error(t, store.AddPlayer(ctx, "123", "other"))

	code, err := store.GetRegistrationCode(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "code", code)

	_, err = store.GetMinecraftName(ctx, "123")
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "pending registration has no name")

	require.NoError(t, store.LinkMinecraftName("123", "Steve"))
	name, err := store.GetMinecraftName(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "Steve", name)

	requestID := store.AddRequest("Steve", "1.2.3.4")
	require.NoError(t, store.InsertAuthentication(ctx, "123", requestID))
	require.NoError(t, store.DeletePlayer(ctx, "123"))

	ok, err := store.IsAuthenticated(ctx, "123", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "deleting a player drops its authentication")
	assert.ErrorIs(t, store.DeletePlayer(ctx, "123"), sentinel.ErrNotFound)
}
