package redis_test

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rpggio/freightline/internal/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *redis.CounterStore {
	t.Helper()
	addr := os.Getenv("FREIGHT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FREIGHT_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := redis.NewClient(ctx, redis.Config{Addr: addr})
	require.NoError(t, err)

	prefix := "freight:test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return redis.NewCounterStore(client, prefix)
}

func TestCounterStore_Next(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Next(ctx, "job:SEA:EX:25")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := store.Next(ctx, "quote:SEA:EX:25")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestCounterStore_Concurrent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const callers = 40
	serials := make([]int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.Next(ctx, "job:AIR:IM:25")
			assert.NoError(t, err)
			serials[i] = v
		}(i)
	}
	wg.Wait()

	sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })
	for i, s := range serials {
		assert.Equal(t, int64(i+1), s)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := redis.NewClient(context.Background(), redis.Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
