package spritekit

import (
	"fmt"
	"image"
	"sync/atomic"
	"weak"

	"github.com/gogpu/spritekit/atlas"
)

// SpriteDesc describes the shape of a sprite.
type SpriteDesc struct {
	// Width and Height are the drawn size in pixels.
	Width, Height int
	// Frames is the number of animation frames. Zero means 1.
	Frames int
	// Components is the number of images per frame, for example a color
	// map and a normal map. Zero means 1.
	Components int
}

func (d SpriteDesc) normalize() (SpriteDesc, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return d, &ConfigError{Field: "Width/Height", Reason: fmt.Sprintf("%dx%d must be positive", d.Width, d.Height)}
	}
	if d.Frames < 0 || d.Components < 0 {
		return d, &ConfigError{Field: "Frames/Components", Reason: "must not be negative"}
	}
	d.Frames = max(d.Frames, 1)
	d.Components = max(d.Components, 1)
	return d, nil
}

// Layers returns the number of atlas frames the sprite occupies.
func (d SpriteDesc) Layers() int { return d.Frames * d.Components }

// spriteHandle is shared by all clones of a sprite. The atlas holds only a
// weak pointer to it, so it dies with the last clone.
type spriteHandle struct {
	state    *atlas.SpriteState
	released atomic.Bool
}

// Sprite is an animated, possibly multi-component image stored in an atlas.
//
// Sprite values are immutable apart from the shared texture location that
// pruning rewrites. A sprite stays in the atlas until Release is called or
// every clone becomes unreachable; the next Prune then reclaims its frames.
type Sprite struct {
	h *spriteHandle

	desc   SpriteDesc
	bucket int
	padded int
}

// LoadSprite pads images into frames and stores them in ctx. images is
// indexed by channel*desc.Frames + frame.
func LoadSprite(ctx *atlas.Context, desc SpriteDesc, images []image.Image) (*Sprite, error) {
	desc, err := desc.normalize()
	if err != nil {
		return nil, err
	}
	if len(images) != desc.Layers() {
		return nil, fmt.Errorf("%w: got %d images, want %d", ErrFrameCount, len(images), desc.Layers())
	}
	_, padded := ctx.BucketInfo(desc.Width, desc.Height)

	frames := make([]atlas.RawFrame, len(images))
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() > desc.Width || b.Dy() > desc.Height {
			return nil, fmt.Errorf("%w: image %d is %dx%d, sprite is %dx%d",
				ErrImageSize, i, b.Dx(), b.Dy(), desc.Width, desc.Height)
		}
		if frames[i], err = atlas.FrameFromImage(img, padded); err != nil {
			return nil, fmt.Errorf("spritekit: image %d: %w", i, err)
		}
	}
	return NewSprite(ctx, desc, frames)
}

// NewSprite stores already padded frames in ctx. Every frame must have the
// padded edge of the sprite's bucket. The atlas takes ownership of the
// frames.
func NewSprite(ctx *atlas.Context, desc SpriteDesc, frames []atlas.RawFrame) (*Sprite, error) {
	desc, err := desc.normalize()
	if err != nil {
		return nil, err
	}
	if len(frames) != desc.Layers() {
		return nil, fmt.Errorf("%w: got %d frames, want %d", ErrFrameCount, len(frames), desc.Layers())
	}
	bucket, padded := ctx.BucketInfo(desc.Width, desc.Height)
	if bucket >= ctx.NumBuckets() {
		return nil, fmt.Errorf("%w: %dx%d, max %d", ErrSpriteTooLarge, desc.Width, desc.Height, ctx.Config().MaxSize)
	}

	base, err := ctx.StoreFrames(bucket, frames)
	if err != nil {
		return nil, fmt.Errorf("spritekit: store frames: %w", err)
	}

	h := &spriteHandle{
		state: atlas.NewSpriteState(uint32(base), len(frames), ctx.Epoch()), //nolint:gosec // frame ids fit in uint32
	}
	if err := ctx.StoreSprite(bucket, atlas.Registration{State: h.state, Alive: probe(h)}); err != nil {
		return nil, fmt.Errorf("spritekit: register sprite: %w", err)
	}

	return &Sprite{h: h, desc: desc, bucket: bucket, padded: padded}, nil
}

// probe returns a liveness check that does not keep h reachable.
func probe(h *spriteHandle) func() bool {
	w := weak.Make(h)
	return func() bool {
		h := w.Value()
		return h != nil && !h.released.Load()
	}
}

// DrawOp holds the parameters of one sprite draw.
type DrawOp struct {
	// Frame is the animation frame. It wraps modulo the frame count, so
	// negative values count from the end.
	Frame int
	// Channel is the component index.
	Channel  int
	Position Point
	// Rotation is in radians.
	Rotation float64
	// Scale multiplies the sprite size. The zero value means (1, 1).
	Scale Point
	Color RGBA
	// Tracked pins the layer to the sprite's epoch. Untracked draws carry
	// no epoch requirement.
	Tracked bool
}

// Draw appends an untracked quad for frame at pos.
func (s *Sprite) Draw(l *Layer, frame int, pos Point, color RGBA) error {
	return s.DrawOp(l, DrawOp{Frame: frame, Position: pos, Color: color})
}

// DrawTracked appends a quad pinned to the sprite's current epoch. It
// panics with an error wrapping ErrEpochMismatch if the layer already holds
// quads from another epoch.
func (s *Sprite) DrawTracked(l *Layer, frame int, pos Point, color RGBA) error {
	return s.DrawOp(l, DrawOp{Frame: frame, Position: pos, Color: color, Tracked: true})
}

// DrawOp appends one quad described by op.
func (s *Sprite) DrawOp(l *Layer, op DrawOp) error {
	if s.h.released.Load() {
		return ErrSpriteReleased
	}
	if op.Channel < 0 || op.Channel >= s.desc.Components {
		return fmt.Errorf("%w: %d of %d", ErrChannelRange, op.Channel, s.desc.Components)
	}
	scale := op.Scale
	if scale == (Point{}) {
		scale = Pt(1, 1)
	}

	var epoch uint64
	if op.Tracked {
		epoch = s.h.state.Epoch()
	}
	l.AddRect(epoch, Quad{
		Position: op.Position,
		Size:     Pt(float64(s.desc.Width)*scale.X, float64(s.desc.Height)*scale.Y),
		Rotation: op.Rotation,
		Color:    op.Color,
		Bucket:   uint32(s.bucket), //nolint:gosec // bucket < NumBuckets
		Texture:  s.textureID(op.Frame, op.Channel),
		UV:       Pt(float64(s.desc.Width)/float64(s.padded), float64(s.desc.Height)/float64(s.padded)),
		Channel:  uint32(op.Channel), //nolint:gosec // checked above
	})
	return nil
}

// textureID resolves the atlas layer for a frame and channel.
func (s *Sprite) textureID(frame, channel int) uint32 {
	n := s.desc.Frames
	f := ((frame % n) + n) % n
	return s.h.state.TextureID() + uint32(f+n*channel) //nolint:gosec // bounded by Layers()
}

// TextureIDFor returns the atlas layer that frame and channel resolve to.
func (s *Sprite) TextureIDFor(frame, channel int) uint32 {
	return s.textureID(frame, channel)
}

// Clone returns a sprite sharing s's atlas frames. The frames stay alive
// while any clone is reachable and none has been released.
func (s *Sprite) Clone() *Sprite {
	c := *s
	return &c
}

// Release marks the sprite and all its clones as dead. The next Prune
// reclaims its frames. Drawing a released sprite returns ErrSpriteReleased.
func (s *Sprite) Release() { s.h.released.Store(true) }

// Released reports whether Release has been called on any clone.
func (s *Sprite) Released() bool { return s.h.released.Load() }

// Width returns the sprite width in pixels.
func (s *Sprite) Width() int { return s.desc.Width }

// Height returns the sprite height in pixels.
func (s *Sprite) Height() int { return s.desc.Height }

// FrameCount returns the number of animation frames.
func (s *Sprite) FrameCount() int { return s.desc.Frames }

// Components returns the number of channels per frame.
func (s *Sprite) Components() int { return s.desc.Components }

// Bucket returns the atlas bucket holding the sprite.
func (s *Sprite) Bucket() int { return s.bucket }

// PaddedSize returns the frame edge of the sprite's bucket.
func (s *Sprite) PaddedSize() int { return s.padded }

// TextureID returns the atlas layer of the sprite's first frame.
func (s *Sprite) TextureID() uint32 { return s.h.state.TextureID() }

// Epoch returns the atlas epoch the texture id belongs to.
func (s *Sprite) Epoch() uint64 { return s.h.state.Epoch() }

// State returns the shared state that pruning rewrites.
func (s *Sprite) State() *atlas.SpriteState { return s.h.state }
