package atlas

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Config holds atlas configuration.
type Config struct {
	// MaxSize is the largest frame edge the atlas accepts.
	// Must be a power of 2 in [MinBucketSize, MaxBucketSize]. Default: 2048
	MaxSize int

	// InitialFrames is the frame capacity preallocated per bucket.
	// Default: 16
	InitialFrames int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize:       2048,
		InitialFrames: 16,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxSize < MinBucketSize {
		return &ConfigError{Field: "MaxSize", Reason: fmt.Sprintf("must be at least %d", MinBucketSize)}
	}
	if c.MaxSize > MaxBucketSize {
		return &ConfigError{Field: "MaxSize", Reason: fmt.Sprintf("must be at most %d", MaxBucketSize)}
	}
	if c.MaxSize&(c.MaxSize-1) != 0 {
		return &ConfigError{Field: "MaxSize", Reason: "must be power of 2"}
	}
	if c.InitialFrames < 0 {
		return &ConfigError{Field: "InitialFrames", Reason: "must be non-negative"}
	}
	return nil
}

// Context owns the buckets of one atlas and its epoch counter.
//
// StoreFrames and StoreSprite are safe for concurrent use. Update, Prune and
// Close are serialised with each other; Prune must additionally not overlap
// any store call or any read of a layer drawn in the previous epoch.
type Context struct {
	cfg     Config
	buckets []*Bucket

	// epoch starts at 1. Zero means "no epoch" to layers.
	epoch atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// Stats is a snapshot of atlas occupancy.
type Stats struct {
	Epoch         uint64
	Frames        int
	Registrations int
	DirtyBuckets  int
	Buckets       []BucketStats
}

// PruneStats reports the result of a prune over all buckets.
type PruneStats struct {
	Epoch     uint64
	Reclaimed int
	Survivors int
	Dropped   int
	Buckets   []BucketStats
}

// NewContext creates an atlas with buckets up to cfg.MaxSize.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	last, _ := BucketInfo(cfg.MaxSize, cfg.MaxSize)
	c := &Context{
		cfg:     cfg,
		buckets: make([]*Bucket, last+1),
	}
	for i := range c.buckets {
		c.buckets[i] = newBucket(i, cfg.InitialFrames)
	}
	c.epoch.Store(1)
	return c, nil
}

// Config returns the configuration the context was created with.
func (c *Context) Config() Config { return c.cfg }

// BucketInfo returns the bucket id and padded frame edge for an image.
func (c *Context) BucketInfo(width, height int) (bucket, padded int) {
	return BucketInfo(width, height)
}

// NumBuckets returns the number of buckets in this context.
func (c *Context) NumBuckets() int { return len(c.buckets) }

// Bucket returns the bucket with the given id, or nil.
func (c *Context) Bucket(id int) *Bucket {
	if id < 0 || id >= len(c.buckets) {
		return nil
	}
	return c.buckets[id]
}

// Epoch returns the current atlas epoch.
func (c *Context) Epoch() uint64 { return c.epoch.Load() }

// StoreFrames appends frames to a bucket and returns the first frame id.
func (c *Context) StoreFrames(bucket int, frames []RawFrame) (int, error) {
	b := c.Bucket(bucket)
	if b == nil {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrBucketRange, bucket, len(c.buckets))
	}
	return b.StoreFrames(frames)
}

// StoreSprite registers a sprite with a bucket.
func (c *Context) StoreSprite(bucket int, reg Registration) error {
	b := c.Bucket(bucket)
	if b == nil {
		return fmt.Errorf("%w: %d (have %d)", ErrBucketRange, bucket, len(c.buckets))
	}
	b.StoreSprite(reg)
	return nil
}

// Update rebuilds every dirty bucket.
func (c *Context) Update(backend Backend) error {
	if backend == nil {
		return ErrNilBackend
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	var errs []error
	for _, b := range c.buckets {
		if err := b.Update(backend); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Prune advances the epoch and compacts every bucket. Surviving sprites are
// retagged with the new epoch. Backend may be nil to defer texture rebuilds
// to the next Update.
func (c *Context) Prune(backend Backend) (PruneStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return PruneStats{}, ErrClosed
	}

	epoch := c.epoch.Add(1)
	stats := PruneStats{Epoch: epoch, Buckets: make([]BucketStats, 0, len(c.buckets))}

	var errs []error
	for _, b := range c.buckets {
		bs, err := b.Prune(backend, epoch)
		if err != nil {
			errs = append(errs, err)
		}
		stats.Reclaimed += bs.Reclaimed
		stats.Survivors += bs.Survivors
		stats.Dropped += bs.Dropped
		stats.Buckets = append(stats.Buckets, bs)

		if bs.Reclaimed > 0 || bs.Dropped > 0 {
			slogger().Debug("atlas: bucket pruned",
				"bucket", bs.Bucket,
				"frames", bs.Frames,
				"reclaimed", bs.Reclaimed,
				"survivors", bs.Survivors,
				"dropped", bs.Dropped)
		}
	}

	slogger().Debug("atlas: prune complete",
		"epoch", epoch,
		"reclaimed", stats.Reclaimed,
		"survivors", stats.Survivors,
		"dropped", stats.Dropped)
	return stats, errors.Join(errs...)
}

// Stats returns a snapshot of atlas occupancy.
func (c *Context) Stats() Stats {
	s := Stats{Epoch: c.Epoch(), Buckets: make([]BucketStats, 0, len(c.buckets))}
	for _, b := range c.buckets {
		b.mu.Lock()
		bs := BucketStats{Bucket: b.id, Frames: len(b.frames), Survivors: len(b.regs)}
		if b.dirty {
			s.DirtyBuckets++
		}
		b.mu.Unlock()

		s.Frames += bs.Frames
		s.Registrations += bs.Survivors
		s.Buckets = append(s.Buckets, bs)
	}
	return s
}

// Close releases every bucket texture. The context cannot be updated or
// pruned afterwards. Close is idempotent.
func (c *Context) Close(backend Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, b := range c.buckets {
		b.Close(backend)
	}
}
