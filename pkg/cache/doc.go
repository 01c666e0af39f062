// Package cache provides an optional Redis-backed cache for listing pages.
//
// The cache stores raw page bodies keyed by endpoint and page number so a
// rerun within the TTL window does not hit the remote API again. Caching is
// transparent to the fetch loop: the client consults it before issuing a
// request and fills it after a successful one.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient, 5*time.Minute)
//
//	// Create cache key
//	key := cache.Key{
//		Endpoint: "https://api.jikan.moe/v4/anime",
//		Page:     3,
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the API
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - harvest_cache_hits_total{layer="redis"} - Cache hits
//   - harvest_cache_misses_total - Cache misses
//   - harvest_cache_size_bytes{layer="redis"} - Cache size
//   - harvest_cache_errors_total{operation} - Cache operation errors
package cache
