package native

import "errors"

// Native backend errors.
var (
	// ErrNilDevice is returned when creating a backend without a device.
	ErrNilDevice = errors.New("native: device is nil")

	// ErrNilQueue is returned when creating a backend without a queue.
	ErrNilQueue = errors.New("native: queue is nil")

	// ErrNotHAL is returned when a provider does not expose HAL handles.
	ErrNotHAL = errors.New("native: provider does not expose HAL types")

	// ErrInvalidArray is returned when a texture array cannot be built.
	ErrInvalidArray = errors.New("native: invalid texture array")
)
