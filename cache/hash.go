package cache

import "hash/fnv"

// Hasher is a function that computes a hash for a key.
// Used by ShardedCache for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// IntHasher computes a hash of an int key using FNV-1a.
func IntHasher(i int) uint64 {
	return Uint64Hasher(uint64(i)) //nolint:gosec // bit pattern only
}

// Uint64Hasher mixes the bits of u so that keys differing only in their
// high bits still spread across shards.
func Uint64Hasher(u uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(u >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
