package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokengate/tokengate/internal/domain/repository"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client), mr
}

func TestPutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k1", "v1", time.Minute))

	value, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestDeleteMissingKeyIsNoError(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "absent"))
}

func TestTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k1", "v1", time.Minute))
	ttl, err := store.TTL(ctx, "k1")
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 2)

	_, err = store.TTL(ctx, "absent")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
	_, err = store.TTL(ctx, "k1")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestTTLWithoutExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("k1", "v1"))

	ttl, err := store.TTL(context.Background(), "k1")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestDeleteByPrefix(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:alice:a1", "1", time.Minute))
	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:alice:a2", "2", time.Minute))
	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:alice2:a1", "3", time.Minute))

	deleted, err := store.DeleteByPrefix(ctx, "app:auth:t1:access:d:alice:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// The sibling account survives.
	value, err := store.Get(ctx, "app:auth:t1:access:d:alice2:a1")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestDeleteByPrefixGlobMetacharacters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// An account name containing glob characters must never widen the
	// prefix to sibling accounts.
	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:ali*:a1", "1", time.Minute))
	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:alice:a1", "2", time.Minute))
	require.NoError(t, store.Put(ctx, "app:auth:t1:access:d:ali?:a1", "3", time.Minute))

	deleted, err := store.DeleteByPrefix(ctx, "app:auth:t1:access:d:ali*:")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	value, err := store.Get(ctx, "app:auth:t1:access:d:alice:a1")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	value, err = store.Get(ctx, "app:auth:t1:access:d:ali?:a1")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestDeleteByPrefixEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	deleted, err := store.DeleteByPrefix(context.Background(), "nothing:")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestListByPrefix(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "p:a", "1", time.Minute))
	require.NoError(t, store.Put(ctx, "p:b", "2", time.Minute))
	require.NoError(t, store.Put(ctx, "q:c", "3", time.Minute))

	pairs, err := store.ListByPrefix(ctx, "p:")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p:a": "1", "p:b": "2"}, pairs)
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
