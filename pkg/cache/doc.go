// Package cache provides a Redis-backed response cache for list API pages.
//
// Entries hold the raw page body together with an expiry; the TTL comes
// from client configuration, since the upstream list APIs served here do
// not emit cache validators of their own. Keys are deterministic over
// endpoint plus query parameters, so every distinct page (limit/offset
// combination) caches separately.
//
// Example usage:
//
//	manager := cache.NewManager(redisClient)
//	key := cache.Key{Endpoint: "/markets", Query: params}
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch upstream, then:
//		_ = manager.Set(ctx, key, cache.NewEntry(body, time.Minute))
//	}
package cache
