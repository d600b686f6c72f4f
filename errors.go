package spritekit

import (
	"errors"
	"fmt"
)

var (
	// ErrEpochMismatch is wrapped by the panic raised when a quad from one
	// atlas epoch is drawn onto a layer pinned to another.
	ErrEpochMismatch = errors.New("spritekit: sprite epoch does not match layer epoch")

	// ErrSpriteReleased is returned when drawing a released sprite.
	ErrSpriteReleased = errors.New("spritekit: sprite released")

	// ErrSpriteTooLarge is returned when a sprite does not fit the atlas.
	ErrSpriteTooLarge = errors.New("spritekit: sprite larger than atlas max size")

	// ErrChannelRange is returned for a component index outside the sprite.
	ErrChannelRange = errors.New("spritekit: channel out of range")

	// ErrFrameCount is returned when the number of supplied images or frames
	// does not match Frames*Components.
	ErrFrameCount = errors.New("spritekit: wrong number of frames")

	// ErrImageSize is returned when a source image is larger than the
	// sprite's declared size.
	ErrImageSize = errors.New("spritekit: image larger than sprite")

	// ErrRunnerClosed is returned by Run after Close.
	ErrRunnerClosed = errors.New("spritekit: frame runner closed")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("spritekit: invalid config.%s: %s", e.Field, e.Reason)
}
