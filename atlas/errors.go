package atlas

import "errors"

// Sentinel errors for the atlas package.
var (
	// ErrBucketRange is returned when a bucket id is outside the context.
	ErrBucketRange = errors.New("atlas: bucket id out of range")

	// ErrFrameSize is returned when a frame does not match its bucket size.
	ErrFrameSize = errors.New("atlas: frame size does not match bucket")

	// ErrImageTooLarge is returned when an image does not fit in a frame.
	ErrImageTooLarge = errors.New("atlas: image larger than frame")

	// ErrNilBackend is returned when an operation needs a backend and none
	// was given.
	ErrNilBackend = errors.New("atlas: nil backend")

	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("atlas: context closed")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
