package cache

import (
	"sync"
	"sync/atomic"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// ShardedCache is a thread-safe, sharded LRU cache for high-concurrency scenarios.
//
// Features:
//   - 16 shards for reduced lock contention
//   - LRU eviction with configurable capacity per shard
//   - Removal callbacks for values that own external resources
//   - Atomic statistics for monitoring
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*shardedCacheShard[K, V]
	hasher   Hasher[K]
	capacity int // Per-shard capacity
	onEvict  func(K, V)

	// Statistics (atomic for zero-allocation reads)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// shardedCacheShard is a single shard of the cache.
type shardedCacheShard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*shardedCacheEntry[K, V]
	lru     *lruList[K]
}

// shardedCacheEntry holds a cached value with its LRU node.
type shardedCacheEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// removed is a key/value pair handed to the removal callback.
type removed[K comparable, V any] struct {
	key   K
	value V
}

// Option configures a ShardedCache.
type Option[K comparable, V any] func(*ShardedCache[K, V])

// WithOnEvict sets a callback invoked for every value that leaves the cache,
// whether through LRU eviction, replacement by Set, Delete or Clear.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *ShardedCache[K, V]) {
		c.onEvict = fn
	}
}

// NewSharded creates a new sharded cache with the specified capacity per shard.
// Total capacity is approximately capacity * DefaultShardCount (16).
//
// If capacity <= 0, DefaultCapacity (256) is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K], opts ...Option[K, V]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &ShardedCache[K, V]{
		hasher:   hasher,
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := range c.shards {
		c.shards[i] = &shardedCacheShard[K, V]{
			entries: make(map[K]*shardedCacheEntry[K, V]),
			lru:     newLRUList[K](),
		}
	}

	return c
}

// getShard returns the shard for a given key.
func (c *ShardedCache[K, V]) getShard(key K) *shardedCacheShard[K, V] {
	hash := c.hasher(key)
	return c.shards[hash&shardMask]
}

// Get retrieves a cached value by key.
// On cache hit, the entry is moved to the front of the LRU list.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	shard := c.getShard(key)

	shard.mu.Lock()
	entry, ok := shard.entries[key]
	if !ok {
		shard.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	shard.lru.MoveToFront(entry.node)
	value := entry.value
	shard.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Peek retrieves a cached value without touching LRU order or statistics.
func (c *ShardedCache[K, V]) Peek(key K) (V, bool) {
	shard := c.getShard(key)

	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if entry, ok := shard.entries[key]; ok {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value in the cache.
// If the shard exceeds capacity after insertion, oldest entries are evicted.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	shard := c.getShard(key)

	shard.mu.Lock()
	var out []removed[K, V]
	if existing, ok := shard.entries[key]; ok {
		out = append(out, removed[K, V]{key, existing.value})
		existing.value = value
		shard.lru.MoveToFront(existing.node)
	} else {
		out = c.insertLocked(shard, key, value, out)
	}
	shard.mu.Unlock()

	c.notify(out)
}

// GetOrCreate returns a cached value or creates it using the provided function.
//
// The create function is called with the shard lock held to prevent
// duplicate computation. Keep it fast and do not call back into the cache.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	v, _ := c.GetOrCreateErr(key, func() (V, error) { return create(), nil })
	return v
}

// GetOrCreateErr is like GetOrCreate for fallible constructors.
// Errors are returned to the caller and nothing is cached.
func (c *ShardedCache[K, V]) GetOrCreateErr(key K, create func() (V, error)) (V, error) {
	shard := c.getShard(key)

	shard.mu.Lock()
	if entry, ok := shard.entries[key]; ok {
		shard.lru.MoveToFront(entry.node)
		value := entry.value
		shard.mu.Unlock()
		c.hits.Add(1)
		return value, nil
	}

	c.misses.Add(1)
	value, err := create()
	if err != nil {
		shard.mu.Unlock()
		return value, err
	}
	out := c.insertLocked(shard, key, value, nil)
	shard.mu.Unlock()

	c.notify(out)
	return value, nil
}

// insertLocked adds a new entry, evicting the oldest entries first if the
// shard is full. Evicted pairs are appended to out.
func (c *ShardedCache[K, V]) insertLocked(shard *shardedCacheShard[K, V], key K, value V, out []removed[K, V]) []removed[K, V] {
	for shard.lru.Len() >= c.capacity {
		oldest, ok := shard.lru.RemoveOldest()
		if !ok {
			break
		}
		out = append(out, removed[K, V]{oldest, shard.entries[oldest].value})
		delete(shard.entries, oldest)
		c.evictions.Add(1)
	}

	node := shard.lru.PushFront(key)
	shard.entries[key] = &shardedCacheEntry[K, V]{
		value: value,
		node:  node,
	}
	return out
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	shard := c.getShard(key)

	shard.mu.Lock()
	entry, ok := shard.entries[key]
	if ok {
		shard.lru.Remove(entry.node)
		delete(shard.entries, key)
	}
	shard.mu.Unlock()

	if ok {
		c.notify([]removed[K, V]{{key, entry.value}})
	}
	return ok
}

// Clear removes all entries from the cache.
func (c *ShardedCache[K, V]) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		var out []removed[K, V]
		if c.onEvict != nil {
			out = make([]removed[K, V], 0, len(shard.entries))
			for k, e := range shard.entries {
				out = append(out, removed[K, V]{k, e.value})
			}
		}
		shard.entries = make(map[K]*shardedCacheEntry[K, V])
		shard.lru.Clear()
		shard.mu.Unlock()

		c.notify(out)
	}
}

// Range calls fn for every entry until fn returns false. Each shard is
// read-locked while it is visited, so fn must not modify the cache.
func (c *ShardedCache[K, V]) Range(fn func(K, V) bool) {
	for _, shard := range c.shards {
		shard.mu.RLock()
		for k, e := range shard.entries {
			if !fn(k, e.value) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

func (c *ShardedCache[K, V]) notify(out []removed[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, r := range out {
		c.onEvict(r.key, r.value)
	}
}

// Len returns the total number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// Capacity returns the per-shard capacity.
func (c *ShardedCache[K, V]) Capacity() int {
	return c.capacity
}

// TotalCapacity returns the total capacity across all shards.
func (c *ShardedCache[K, V]) TotalCapacity() int {
	return c.capacity * DefaultShardCount
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (c *ShardedCache[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, shard := range c.shards {
		shard.mu.RLock()
		lens[i] = len(shard.entries)
		shard.mu.RUnlock()
	}
	return lens
}

// Stats holds cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the per-shard capacity.
	Capacity int
	// TotalCapacity is the total capacity across all shards.
	TotalCapacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries evicted for capacity.
	Evictions uint64
}

// Stats returns current cache statistics.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	evictions := c.evictions.Load()

	var hitRate float64
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.capacity * DefaultShardCount,
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     evictions,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
