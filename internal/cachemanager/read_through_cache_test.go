package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/strata/internal/mocks"
)

func TestReadThrough_NilCacheAlwaysLoads(t *testing.T) {
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for range 2 {
		v, hit, err := ReadThrough[string, int](context.Background(), nil, "k", time.Minute, load)
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, 42, v)
	}
	require.Equal(t, 2, calls)
}

func TestReadThrough_Hit(t *testing.T) {
	cache := mocks.NewMockCacheManager[string, int](t)
	cache.On("Get", mock.Anything, "k").Return(5, true).Once()

	v, hit, err := ReadThrough(context.Background(), cache, "k", time.Minute, func(context.Context) (int, error) {
		t.Fatal("load must not run on a hit")
		return 0, nil
	})
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 5, v)
}

func TestReadThrough_MissStoresResult(t *testing.T) {
	cache := mocks.NewMockCacheManager[string, int](t)
	cache.On("Get", mock.Anything, "k").Return(0, false).Once()
	cache.On("Set", mock.Anything, "k", 9, time.Minute).Return().Once()

	v, hit, err := ReadThrough(context.Background(), cache, "k", time.Minute, func(context.Context) (int, error) {
		return 9, nil
	})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 9, v)
}

func TestReadThrough_ErrorNotCached(t *testing.T) {
	cache := mocks.NewMockCacheManager[string, int](t)
	cache.On("Get", mock.Anything, "k").Return(0, false).Once()

	boom := errors.New("boom")
	_, hit, err := ReadThrough(context.Background(), cache, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, hit)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThrough_InMemory(t *testing.T) {
	cache := newTestCache[int]()
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	first, hit, err := ReadThrough[string, int](context.Background(), cache, "k", time.Minute, load)
	require.NoError(t, err)
	require.False(t, hit)

	second, hit, err := ReadThrough[string, int](context.Background(), cache, "k", time.Minute, load)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)
}
