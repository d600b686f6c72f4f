// Package text draws shaped strings with glyph sprites stored in a
// spritekit atlas.
//
// A [Face] wraps one OpenType font. It is parsed twice: once by
// golang.org/x/image/font/opentype for outlines and once by
// github.com/go-text/typesetting for HarfBuzz shaping.
//
// A [GlyphCache] rasterizes each (glyph, size) pair on first use into an
// atlas frame and keeps the resulting sprite in a sharded LRU. Evicted
// glyphs are released, so the next atlas prune reclaims their frames.
//
//	face, _ := text.ParseFace(goregular.TTF)
//	glyphs, _ := text.NewGlyphCache(ctx, face, text.DefaultGlyphCacheConfig())
//	glyphs.DrawString(layer, "Hello", spritekit.Pt(10, 30), spritekit.White)
//
// Strings are split into bidirectional runs with golang.org/x/text/unicode/bidi
// before shaping, so mixed left-to-right and right-to-left text is laid out
// in visual order.
package text
