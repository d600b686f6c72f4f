package text

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/cache"
)

// GlyphCacheConfig configures a GlyphCache.
type GlyphCacheConfig struct {
	// Capacity is the number of glyphs kept per cache shard.
	Capacity int
	// Size is the default pixel size used by DrawString.
	Size float64
}

// DefaultGlyphCacheConfig returns a config for 16px text with room for
// 4096 glyphs.
func DefaultGlyphCacheConfig() GlyphCacheConfig {
	return GlyphCacheConfig{
		Capacity: 256,
		Size:     16,
	}
}

// Validate checks the config for errors.
func (c *GlyphCacheConfig) Validate() error {
	if c.Capacity <= 0 {
		return &spritekit.ConfigError{Field: "Capacity", Reason: "must be positive"}
	}
	if c.Size <= 0 || math.IsNaN(c.Size) || math.IsInf(c.Size, 0) {
		return &spritekit.ConfigError{Field: "Size", Reason: fmt.Sprintf("%v is not a valid pixel size", c.Size)}
	}
	return nil
}

// GlyphSprite is a cached glyph. Sprite is nil for glyphs with no outline.
type GlyphSprite struct {
	Sprite *spritekit.Sprite
	// Bearing is the offset of the sprite's top-left corner from the pen.
	Bearing spritekit.Point
}

// GlyphCache maps (glyph, size) pairs to atlas sprites.
//
// GlyphCache is safe for concurrent use. DrawString may be called from
// draw goroutines; new glyphs are stored in the atlas as they are first
// seen, which the atlas allows during drawing.
type GlyphCache struct {
	atlas *atlas.Context
	face  *Face
	cfg   GlyphCacheConfig

	glyphs *cache.ShardedCache[uint64, *GlyphSprite]

	rasterized atomic.Int64
}

// NewGlyphCache creates a cache that stores glyphs of face in ctx.
func NewGlyphCache(ctx *atlas.Context, face *Face, cfg GlyphCacheConfig) (*GlyphCache, error) {
	if face == nil {
		return nil, ErrNilFace
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &GlyphCache{atlas: ctx, face: face, cfg: cfg}
	c.glyphs = cache.NewSharded[uint64, *GlyphSprite](cfg.Capacity, cache.Uint64Hasher,
		cache.WithOnEvict(func(_ uint64, g *GlyphSprite) {
			if g.Sprite != nil {
				g.Sprite.Release()
			}
		}))
	return c, nil
}

func glyphKey(id GlyphID, size float64) uint64 {
	return uint64(id)<<32 | uint64(math.Float32bits(float32(size)))
}

// Glyph returns the sprite for id at size, rasterizing it on first use.
func (c *GlyphCache) Glyph(id GlyphID, size float64) (*GlyphSprite, error) {
	return c.glyphs.GetOrCreateErr(glyphKey(id, size), func() (*GlyphSprite, error) {
		return c.load(id, size)
	})
}

func (c *GlyphCache) load(id GlyphID, size float64) (*GlyphSprite, error) {
	bm, err := c.face.Rasterize(id, size)
	if errors.Is(err, ErrEmptyGlyph) {
		return &GlyphSprite{}, nil
	}
	if err != nil {
		return nil, err
	}

	s, err := spritekit.NewSprite(c.atlas,
		spritekit.SpriteDesc{Width: bm.Width, Height: bm.Height},
		[]atlas.RawFrame{bm.Frame})
	if err != nil {
		return nil, fmt.Errorf("text: glyph %d at %vpx: %w", id, size, err)
	}
	c.rasterized.Add(1)
	return &GlyphSprite{
		Sprite:  s,
		Bearing: spritekit.Pt(float64(bm.BearingX), float64(bm.BearingY)),
	}, nil
}

// DrawString draws s at the configured size with its baseline starting at
// pos and returns the advance. Glyph quads are pinned to the atlas epoch.
func (c *GlyphCache) DrawString(l *spritekit.Layer, s string, pos spritekit.Point, color spritekit.RGBA) (float64, error) {
	return c.DrawStringSize(l, s, c.cfg.Size, pos, color)
}

// DrawStringSize is like DrawString with an explicit pixel size.
func (c *GlyphCache) DrawStringSize(l *spritekit.Layer, s string, size float64, pos spritekit.Point, color spritekit.RGBA) (float64, error) {
	glyphs := c.face.Shape(s, size)
	for _, g := range glyphs {
		if err := c.drawGlyph(l, g, size, pos, color); err != nil {
			return 0, err
		}
	}
	return Advance(glyphs), nil
}

func (c *GlyphCache) drawGlyph(l *spritekit.Layer, g Glyph, size float64, pos spritekit.Point, color spritekit.RGBA) error {
	// A concurrent eviction can release the sprite between lookup and
	// draw; the second lookup rasterizes it again.
	for range 2 {
		gs, err := c.Glyph(g.ID, size)
		if err != nil {
			spritekit.Logger().Warn("text: glyph not drawn", "glyph", g.ID, "size", size, "err", err)
			return err
		}
		if gs.Sprite == nil {
			return nil
		}
		center := spritekit.Pt(
			pos.X+g.X+gs.Bearing.X+float64(gs.Sprite.Width())/2,
			pos.Y+g.Y+gs.Bearing.Y+float64(gs.Sprite.Height())/2,
		)
		err = gs.Sprite.DrawTracked(l, 0, center, color)
		if !errors.Is(err, spritekit.ErrSpriteReleased) {
			return err
		}
	}
	return spritekit.ErrSpriteReleased
}

// Len returns the number of cached glyphs.
func (c *GlyphCache) Len() int { return c.glyphs.Len() }

// Rasterized returns the number of glyphs rasterized so far.
func (c *GlyphCache) Rasterized() int64 { return c.rasterized.Load() }

// Stats returns cache hit, miss and eviction counters.
func (c *GlyphCache) Stats() cache.Stats { return c.glyphs.Stats() }

// Purge evicts every glyph. Their atlas frames are reclaimed by the next
// prune.
func (c *GlyphCache) Purge() { c.glyphs.Clear() }

// Face returns the cache's face.
func (c *GlyphCache) Face() *Face { return c.face }
