// Package buffer provides a growable append buffer that many goroutines can
// write into at once.
//
// # Buffer[T]
//
// A Buffer hands out non-overlapping index reservations with a single atomic
// add, so concurrent Push and Map calls never contend on a lock. Growing the
// buffer is the only operation that takes a mutex, and it is amortised by
// doubling the capacity.
//
//	buf := buffer.New[Vertex](buffer.WithCapacity(1024))
//
//	// From any number of goroutines:
//	w := buf.Map(4)
//	for i := range 4 {
//	    w.Set(i, quad[i])
//	}
//	w.Release()
//
//	// Later, once every writer is done:
//	r := buf.Get()
//	for _, v := range r.All() {
//	    consume(v)
//	}
//	r.Release()
//	buf.Clear()
//
// # Read and write phases
//
// Writers and readers are mutually exclusive. The buffer does not wait for
// one phase to end before starting the other: entering read mode while a
// write reservation is outstanding (or the other way around) panics with
// [ErrReadWhileWriting] or [ErrWriteWhileReading]. Callers separate the phases
// with their own synchronisation, typically one barrier after all drawing
// goroutines finish and one after the renderer is done reading.
//
// # Storage
//
// Slots live in power-of-two segments that are never moved once allocated.
// A goroutine that reserved an index before a grow can still write it after
// the grow completes.
package buffer
