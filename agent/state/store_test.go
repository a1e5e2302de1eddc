package state

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, opts ...StoreOption) (*RedisTranscriptStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisTranscriptStore(client, opts...)
	require.NoError(t, err)
	return store, mr
}

func TestRedisTranscriptStoreKeepsLastExchanges(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, WithLimit(3), WithKeyPrefix("test:"))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "s1", Exchange{
			User: fmt.Sprintf("q%d", i),
			Bot:  fmt.Sprintf("a%d", i),
		}))
	}

	got, err := store.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "q2", got[0].User)
	require.Equal(t, "a4", got[2].Bot)

	require.True(t, mr.Exists("test:s1"))
	require.Greater(t, mr.TTL("test:s1"), time.Duration(0))
}

func TestRedisTranscriptStoreClear(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s2", Exchange{User: "hi", Bot: "hello"}))
	require.True(t, mr.Exists(defaultStoreKeyPrefix+"s2"))

	require.NoError(t, store.Clear(ctx, "s2"))
	got, err := store.List(ctx, "s2")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRedisTranscriptStoreRejectsEmptySession(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	err := store.Append(context.Background(), "   ", Exchange{User: "x"})
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestRedisTranscriptStoreNoTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, WithTTL(0))
	require.NoError(t, store.Append(context.Background(), "s3", Exchange{User: "x"}))
	require.Equal(t, time.Duration(0), mr.TTL(defaultStoreKeyPrefix+"s3"))
}

func TestMemoryTranscriptStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryTranscriptStore(2)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, "s", Exchange{User: q}))
	}
	got, err := store.List(ctx, "s")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, []string{got[0].User, got[1].User})

	require.NoError(t, store.Clear(ctx, "s"))
	got, _ = store.List(ctx, "s")
	require.Empty(t, got)

	require.ErrorIs(t, store.Append(ctx, "", Exchange{}), ErrInvalidSession)
}
