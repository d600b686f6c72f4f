package buffer

import (
	"fmt"
	"iter"
	"sync/atomic"
)

// WriteView is an exclusive reservation of a contiguous index range.
// Each index in the range must be written by this view only.
//
// A WriteView keeps its buffer in write mode until Release is called.
type WriteView[T any] struct {
	buf      *Buffer[T]
	base     int
	n        int
	released atomic.Bool
}

// Base returns the buffer index of the first reserved slot.
func (w *WriteView[T]) Base() int {
	return w.base
}

// Len returns the number of reserved slots.
func (w *WriteView[T]) Len() int {
	return w.n
}

// Set writes v at offset i within the reservation.
func (w *WriteView[T]) Set(i int, v T) {
	if w.released.Load() {
		panic(ErrViewReleased)
	}
	if i < 0 || i >= w.n {
		panic(fmt.Sprintf("buffer: write offset %d out of range [0,%d)", i, w.n))
	}
	*w.buf.slot(w.base + i) = v
}

// Release ends the reservation. Calling Release more than once is a no-op.
func (w *WriteView[T]) Release() {
	if w.released.CompareAndSwap(false, true) {
		w.buf.writers.Add(-1)
	}
}

// ReadView is a read-only view over the first Len() slots of a buffer.
// Any number of read views may be held at once; while one is held, writes
// panic.
type ReadView[T any] struct {
	buf      *Buffer[T]
	n        int
	released atomic.Bool
}

// Len returns the number of visible elements.
func (r *ReadView[T]) Len() int {
	return r.n
}

// At returns the element at index i.
func (r *ReadView[T]) At(i int) T {
	r.check()
	if i < 0 || i >= r.n {
		panic(fmt.Sprintf("buffer: read index %d out of range [0,%d)", i, r.n))
	}
	return *r.buf.slot(i)
}

// All iterates over the visible elements in index order.
func (r *ReadView[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for chunk := range r.Chunks() {
			for _, v := range chunk {
				if !yield(i, v) {
					return
				}
				i++
			}
		}
	}
}

// Chunks iterates over the visible elements as contiguous sub-slices, one per
// storage segment. The slices alias the buffer and are only valid until the
// view is released.
func (r *ReadView[T]) Chunks() iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		r.check()
		b := r.buf
		for start, k := 0, 0; start < r.n; k++ {
			seg := *b.segments[k].Load()
			end := min(start+len(seg), r.n)
			if !yield(seg[:end-start]) {
				return
			}
			start = end
		}
	}
}

// AppendTo appends the visible elements to dst and returns the result.
func (r *ReadView[T]) AppendTo(dst []T) []T {
	for chunk := range r.Chunks() {
		dst = append(dst, chunk...)
	}
	return dst
}

// Release leaves read mode. Calling Release more than once is a no-op.
func (r *ReadView[T]) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.buf.readers.Add(-1)
	}
}

func (r *ReadView[T]) check() {
	if r.released.Load() {
		panic(ErrViewReleased)
	}
}
