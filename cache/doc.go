// Package cache provides a sharded, thread-safe LRU cache.
//
//	c := cache.NewSharded[string, int](256, cache.StringHasher)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// The cache is split into 16 shards, each with its own lock and LRU list,
// so concurrent access to different keys rarely contends.
//
// # Removal callbacks
//
// WithOnEvict registers a function that is told about every value that
// leaves the cache. Callers that tie external resources to cached values
// (atlas sprites, GPU handles) release them there:
//
//	c := cache.NewSharded(64, cache.Uint64Hasher,
//	    cache.WithOnEvict(func(_ uint64, s *Sprite) { s.Release() }))
//
// Callbacks run after the shard lock is released.
package cache
