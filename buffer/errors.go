package buffer

import "errors"

// Contract violations. The buffer panics with one of these (possibly wrapped)
// when it detects misuse; [Buffer.TryGet] returns ErrReadWhileWriting instead.
var (
	// ErrReadWhileWriting is raised when read mode is requested while a
	// write reservation is outstanding.
	ErrReadWhileWriting = errors.New("buffer: read requested while writers are active")

	// ErrWriteWhileReading is raised when a write begins while a read view
	// is held.
	ErrWriteWhileReading = errors.New("buffer: write requested while readers are active")

	// ErrClearWhileActive is raised when Clear or Shrink is called while
	// any reader or writer is active.
	ErrClearWhileActive = errors.New("buffer: clear requested while readers or writers are active")

	// ErrShrinkBelowLen is raised when Shrink is asked for a capacity
	// smaller than the current length.
	ErrShrinkBelowLen = errors.New("buffer: cannot shrink below current length")

	// ErrViewReleased is raised when a view is used after Release.
	ErrViewReleased = errors.New("buffer: view used after release")
)
