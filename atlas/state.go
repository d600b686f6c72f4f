package atlas

import "sync/atomic"

// NoTexture is the texture id of a sprite that owns no frames.
const NoTexture = ^uint32(0)

// SpriteState is the shared, mutable part of a sprite: where its frames
// currently live and which atlas epoch that location belongs to.
//
// All clones of a sprite point at the same SpriteState. Prune rewrites it in
// place; readers load each field with a single atomic operation.
type SpriteState struct {
	textureID atomic.Uint32
	epoch     atomic.Uint64
	frames    int
}

// NewSpriteState creates a state for a sprite whose frames start at
// textureID and span frames layers.
func NewSpriteState(textureID uint32, frames int, epoch uint64) *SpriteState {
	s := &SpriteState{frames: frames}
	s.textureID.Store(textureID)
	s.epoch.Store(epoch)
	return s
}

// TextureID returns the layer index of the sprite's first frame, or
// NoTexture.
func (s *SpriteState) TextureID() uint32 { return s.textureID.Load() }

// Epoch returns the atlas epoch the texture id belongs to.
func (s *SpriteState) Epoch() uint64 { return s.epoch.Load() }

// Frames returns the number of consecutive layers the sprite owns.
func (s *SpriteState) Frames() int { return s.frames }

// Registration ties a sprite's shared state to a liveness probe.
// Alive must not block and must stay false once it has returned false.
type Registration struct {
	State *SpriteState
	Alive func() bool
}
