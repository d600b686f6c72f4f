package buffer

import (
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the size of the first segment when no capacity is given.
const DefaultCapacity = 64

// maxSegments bounds the segment directory. Segment k (k > 0) holds
// base<<(k-1) slots, so 40 segments cover far more than addressable memory
// for any base >= 1.
const maxSegments = 40

// Buffer is a growable array supporting many concurrent, non-overlapping
// write reservations and a shared read mode over everything written.
//
// The zero value is not usable; create buffers with [New].
//
// Thread safety: Push, Map and Get may be called from any goroutine. Read and
// write phases must not overlap (see the package documentation). Clear and
// Shrink require that no view is outstanding.
type Buffer[T any] struct {
	// segments holds the backing storage. Segment pointers are published
	// before capacity is raised, so a writer that observed the capacity can
	// load its segment without locking.
	segments [maxSegments]atomic.Pointer[[]T]

	// shift is log2 of the first segment size.
	shift uint

	// nsegs is the number of allocated segments. Guarded by growMu.
	nsegs int

	// cursor is the next index to reserve. Indices [0, cursor) are
	// logically valid once all writers have released.
	cursor atomic.Int64

	// capacity is the number of addressable slots.
	capacity atomic.Int64

	// highWater is one past the highest index ever reserved. It is folded in
	// from cursor whenever the buffer is quiescent.
	highWater atomic.Int64

	writers atomic.Int64
	readers atomic.Int64

	// growMu serialises capacity changes.
	growMu sync.Mutex
}

// Option configures a Buffer.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity sets the initial capacity. The value is rounded up to a power
// of two and allocated eagerly.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// New creates an empty buffer.
func New[T any](opts ...Option) *Buffer[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := cfg.capacity
	if base <= 0 {
		base = DefaultCapacity
	}
	b := &Buffer[T]{
		shift: uint(bits.Len(uint(base - 1))), //nolint:gosec // base is positive
	}
	if cfg.capacity > 0 {
		b.grow(cfg.capacity)
	}
	return b
}

// Push reserves one slot, writes v into it and returns its index.
func (b *Buffer[T]) Push(v T) int {
	b.beginWrite()
	idx := int(b.cursor.Add(1) - 1)
	b.ensure(idx + 1)
	*b.slot(idx) = v
	b.writers.Add(-1)
	return idx
}

// Map reserves n contiguous slots and returns a view for writing them.
// The buffer stays in write mode until the view is released.
func (b *Buffer[T]) Map(n int) *WriteView[T] {
	if n < 0 {
		panic(fmt.Sprintf("buffer: negative reservation %d", n))
	}
	b.beginWrite()
	end := int(b.cursor.Add(int64(n)))
	b.ensure(end)
	return &WriteView[T]{buf: b, base: end - n, n: n}
}

// Get enters read mode and returns a view over [0, Len()).
// It panics with [ErrReadWhileWriting] if a writer is active.
func (b *Buffer[T]) Get() *ReadView[T] {
	r, err := b.TryGet()
	if err != nil {
		panic(err)
	}
	return r
}

// TryGet is like Get but reports a concurrent writer as an error instead of
// panicking.
func (b *Buffer[T]) TryGet() (*ReadView[T], error) {
	b.readers.Add(1)
	if b.writers.Load() != 0 {
		b.readers.Add(-1)
		return nil, ErrReadWhileWriting
	}
	n := int(b.cursor.Load())
	b.noteHighWater(n)
	return &ReadView[T]{buf: b, n: n}, nil
}

// Clear resets the length to zero. Capacity and previously written slots are
// kept; they are overwritten by later reservations.
func (b *Buffer[T]) Clear() {
	b.requireQuiescent("Clear")
	b.noteHighWater(int(b.cursor.Load()))
	b.cursor.Store(0)
}

// Shrink releases trailing segments so that capacity is the smallest value
// the segment layout allows that is >= n. Stale slots beyond Len() are
// zeroed so the values they reference can be collected.
func (b *Buffer[T]) Shrink(n int) {
	b.requireQuiescent("Shrink")

	length := b.Len()
	if n < length {
		panic(fmt.Errorf("%w: requested %d, length %d", ErrShrinkBelowLen, n, length))
	}

	b.growMu.Lock()
	defer b.growMu.Unlock()

	keep := 0
	for keep < b.nsegs && b.capacityOf(keep) < n {
		keep++
	}

	high := min(b.Initialized(), b.capacityOf(keep))
	for i := length; i < high; i++ {
		var zero T
		*b.slot(i) = zero
	}
	for k := keep; k < b.nsegs; k++ {
		b.segments[k].Store(nil)
	}
	b.nsegs = keep
	b.capacity.Store(int64(b.capacityOf(keep)))
	b.highWater.Store(int64(length))
}

// Len returns the number of reserved slots.
func (b *Buffer[T]) Len() int {
	return int(b.cursor.Load())
}

// Cap returns the number of slots that can be reserved without growing.
func (b *Buffer[T]) Cap() int {
	return int(b.capacity.Load())
}

// Initialized returns one past the highest index ever reserved since the
// last Shrink. Capacity never drops below this value.
func (b *Buffer[T]) Initialized() int {
	return max(int(b.highWater.Load()), b.Len())
}

// beginWrite enters write mode or panics if a reader holds the buffer.
func (b *Buffer[T]) beginWrite() {
	b.writers.Add(1)
	if b.readers.Load() != 0 {
		b.writers.Add(-1)
		panic(ErrWriteWhileReading)
	}
}

func (b *Buffer[T]) requireQuiescent(op string) {
	if b.writers.Load() != 0 || b.readers.Load() != 0 {
		panic(fmt.Errorf("%w (%s)", ErrClearWhileActive, op))
	}
}

func (b *Buffer[T]) noteHighWater(n int) {
	for {
		cur := b.highWater.Load()
		if int64(n) <= cur || b.highWater.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

// ensure makes index required-1 addressable.
func (b *Buffer[T]) ensure(required int) {
	if int(b.capacity.Load()) >= required {
		return
	}
	b.grow(required)
}

// grow doubles the capacity until at least required slots exist. Existing
// segments are never moved.
func (b *Buffer[T]) grow(required int) {
	b.growMu.Lock()
	defer b.growMu.Unlock()

	for b.capacityOf(b.nsegs) < required {
		if b.nsegs == maxSegments {
			panic(fmt.Sprintf("buffer: capacity exhausted at %d slots", b.capacityOf(b.nsegs)))
		}
		seg := make([]T, b.segmentLen(b.nsegs))
		b.segments[b.nsegs].Store(&seg)
		b.nsegs++
	}
	b.capacity.Store(int64(b.capacityOf(b.nsegs)))
}

// segmentLen returns the number of slots in segment k.
func (b *Buffer[T]) segmentLen(k int) int {
	if k == 0 {
		return 1 << b.shift
	}
	return 1 << (b.shift + uint(k-1)) //nolint:gosec // k >= 1
}

// capacityOf returns the total capacity of the first n segments.
func (b *Buffer[T]) capacityOf(n int) int {
	if n == 0 {
		return 0
	}
	return 1 << (b.shift + uint(n-1)) //nolint:gosec // n >= 1
}

// locate maps a global index to (segment, offset).
func (b *Buffer[T]) locate(i int) (int, int) {
	q := uint(i) >> b.shift //nolint:gosec // i is non-negative
	if q == 0 {
		return 0, i
	}
	k := bits.Len(q)
	return k, i - b.capacityOf(k)
}

// slot returns a pointer to the storage for index i.
func (b *Buffer[T]) slot(i int) *T {
	k, off := b.locate(i)
	seg := b.segments[k].Load()
	return &(*seg)[off]
}
