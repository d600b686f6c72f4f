package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	work := make([]func() error, numTasks)
	for i := range work {
		work[i] = func() error {
			counter.Add(1)
			return nil
		}
	}

	if err := pool.ExecuteAll(work); err != nil {
		t.Fatalf("ExecuteAll() error = %v", err)
	}
	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_IsBarrier(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var done atomic.Int64
	work := make([]func() error, 16)
	for i := range work {
		work[i] = func() error {
			time.Sleep(time.Millisecond)
			done.Add(1)
			return nil
		}
	}

	_ = pool.ExecuteAll(work)
	// Every task has finished by the time ExecuteAll returns.
	if done.Load() != 16 {
		t.Errorf("done = %d after ExecuteAll, want 16", done.Load())
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if err := pool.ExecuteAll(nil); err != nil {
		t.Errorf("ExecuteAll(nil) error = %v", err)
	}
	if err := pool.ExecuteAll([]func() error{}); err != nil {
		t.Errorf("ExecuteAll(empty) error = %v", err)
	}
}

func TestWorkerPool_ExecuteAll_Errors(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var ran atomic.Int64

	err := pool.ExecuteAll([]func() error{
		func() error { ran.Add(1); return errA },
		func() error { ran.Add(1); return nil },
		func() error { ran.Add(1); return errB },
	})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("ExecuteAll() error = %v, want errA and errB", err)
	}
	if ran.Load() != 3 {
		t.Errorf("ran = %d, want 3", ran.Load())
	}
}

func TestWorkerPool_ExecuteAll_RecoversPanic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	sentinel := errors.New("contract violated")
	var ran atomic.Int64

	err := pool.ExecuteAll([]func() error{
		func() error { ran.Add(1); return nil },
		func() error { panic(sentinel) },
		func() error { ran.Add(1); return nil },
	})

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("ExecuteAll() error = %v, want *PanicError", err)
	}
	if pe.Task != 1 {
		t.Errorf("PanicError.Task = %d, want 1", pe.Task)
	}
	if !errors.Is(err, sentinel) {
		t.Error("PanicError does not unwrap to the panic value")
	}
	if len(pe.Stack) == 0 {
		t.Error("PanicError.Stack is empty")
	}
	if ran.Load() != 2 {
		t.Errorf("ran = %d, want 2", ran.Load())
	}

	// The pool keeps working after a panic.
	if err := pool.ExecuteAll([]func() error{func() error { return nil }}); err != nil {
		t.Errorf("ExecuteAll() after panic error = %v", err)
	}
}

func TestPanicError_NonError(t *testing.T) {
	pe := &PanicError{Task: 3, Value: "boom"}
	if pe.Unwrap() != nil {
		t.Error("Unwrap() of non-error value should be nil")
	}
	if pe.Error() != "parallel: task 3 panicked: boom" {
		t.Errorf("Error() = %q", pe.Error())
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestWorkerPool_ExecuteAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	called := false
	err := pool.ExecuteAll([]func() error{func() error { called = true; return nil }})
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("ExecuteAll() after Close error = %v, want ErrPoolClosed", err)
	}
	if called {
		t.Error("work ran after Close")
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		pool := NewWorkerPool(4)
		_ = pool.ExecuteAll([]func() error{func() error { return nil }})
		pool.Close()
	}

	// Give goroutines time to exit.
	time.Sleep(10 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Errorf("goroutines before=%d after=%d, possible leak", before, after)
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestWorkerPool_ConcurrentBatches(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work := make([]func() error, 50)
			for i := range work {
				work[i] = func() error {
					counter.Add(1)
					return nil
				}
			}
			_ = pool.ExecuteAll(work)
		}()
	}
	wg.Wait()

	if counter.Load() != 400 {
		t.Errorf("counter = %d, want 400", counter.Load())
	}
}

func TestWorkerPool_SingleWorker(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func() error, 100)
	for i := range work {
		work[i] = func() error {
			counter.Add(1)
			return nil
		}
	}
	_ = pool.ExecuteAll(work)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
	if pool.QueuedWork() != 0 {
		t.Errorf("QueuedWork() = %d, want 0", pool.QueuedWork())
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_ExecuteAll(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	work := make([]func() error, 64)
	for i := range work {
		work[i] = func() error { return nil }
	}

	b.ResetTimer()
	for range b.N {
		_ = pool.ExecuteAll(work)
	}
}
