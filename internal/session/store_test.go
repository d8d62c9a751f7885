package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, ttl), mr
}

func TestStore_CreateAndGet(t *testing.T) {
	store, mr := setupStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "account-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	accountID, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+id))
}

func TestStore_Expiry(t *testing.T) {
	store, mr := setupStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, "account-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "account-1")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine
	assert.NoError(t, store.Delete(ctx, id))
}

func TestStore_GetEmptyID(t *testing.T) {
	store, _ := setupStore(t, time.Hour)

	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	store := NewStore(client, time.Hour)

	_, err := store.Create(context.Background(), "account-1")
	assert.Error(t, err)
}
