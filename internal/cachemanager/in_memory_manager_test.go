package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countAnswer struct {
	Count int
	Label string
}

func newTestCache[V any]() *InMemoryCacheManager[string, V] {
	return NewInMemoryCacheManager[string, V]("queries", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_GetStructValue(t *testing.T) {
	cache := newTestCache[countAnswer]()
	want := countAnswer{Count: 3, Label: "clicks"}
	cache.Set(context.Background(), "CurrentCountQuery:count", want, time.Minute)

	got, ok := cache.Get(context.Background(), "CurrentCountQuery:count")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestInMemoryCacheManager_GetMiss(t *testing.T) {
	cache := newTestCache[int]()

	got, ok := cache.Get(context.Background(), "absent")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_WrongTypeIsMiss(t *testing.T) {
	cache := newTestCache[int]()
	cache.cache.Set("count", "three", DefaultExpiration)

	got, ok := cache.Get(context.Background(), "count")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemoryCacheManager_AnyValues(t *testing.T) {
	cache := newTestCache[any]()
	cache.Set(context.Background(), "a", 1, 0)
	cache.Set(context.Background(), "b", []string{"x"}, 0)

	a, ok := cache.Get(context.Background(), "a")
	require.True(t, ok)
	require.Equal(t, 1, a)
	require.Equal(t, 2, cache.ItemCount())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := newTestCache[int]()
	cache.Set(context.Background(), "count", 1, time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "count")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := newTestCache[int]()

	_, ok := cache.GetWithRefresh(context.Background(), "count", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "count", 7, time.Hour)
	got, ok := cache.GetWithRefresh(context.Background(), "count", time.Hour)
	require.True(t, ok)
	require.Equal(t, 7, got)
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	cache := newTestCache[int]()
	require.NoError(t, cache.Delete(context.Background()))

	cache.Set(context.Background(), "a", 1, 0)
	cache.Set(context.Background(), "b", 2, 0)
	require.NoError(t, cache.Delete(context.Background(), "a", "missing"))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), "b")
	require.True(t, ok)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := newTestCache[int]()
	cache.Set(context.Background(), "a", 1, 0)
	cache.Set(context.Background(), "b", 2, 0)

	require.NoError(t, cache.Flush(context.Background()))
	require.Zero(t, cache.ItemCount())
	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
}
