package cachemanager

import (
	"context"
	"time"
)

// ReadThrough returns the cached value for key, or calls load and caches its
// result. Errors are never cached. hit reports whether load was skipped.
func ReadThrough[K comparable, V any](
	ctx context.Context,
	cache CacheManager[K, V],
	key K,
	ttl time.Duration,
	load func(ctx context.Context) (V, error),
) (value V, hit bool, err error) {
	if cache == nil {
		value, err = load(ctx)
		return value, false, err
	}

	if value, ok := cache.Get(ctx, key); ok {
		return value, true, nil
	}

	value, err = load(ctx)
	if err != nil {
		return value, false, err
	}

	cache.Set(ctx, key, value, ttl)
	return value, false, nil
}
