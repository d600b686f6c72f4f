package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Face is a parsed OpenType font. It is safe for concurrent use.
type Face struct {
	outlines *opentype.Font
	shaping  *font.Font

	// bufs pools sfnt.Buffer values; sfnt.Font needs one per goroutine.
	bufs sync.Pool
}

// ParseFace parses TrueType or OpenType data. data must not be modified
// afterwards.
func ParseFace(data []byte) (*Face, error) {
	outlines, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	ft, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font for shaping: %w", err)
	}
	f := &Face{outlines: outlines, shaping: ft.Font}
	f.bufs.New = func() any { return new(sfnt.Buffer) }
	return f, nil
}

// Name returns the font family name, or "".
func (f *Face) Name() string {
	buf := f.buffer()
	defer f.bufs.Put(buf)
	name, err := f.outlines.Name(buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Face) NumGlyphs() int { return f.outlines.NumGlyphs() }

// UnitsPerEm returns the design units per em.
func (f *Face) UnitsPerEm() int { return int(f.outlines.UnitsPerEm()) }

// GlyphIndex returns the glyph for r, or 0 if the font has none.
func (f *Face) GlyphIndex(r rune) GlyphID {
	buf := f.buffer()
	defer f.bufs.Put(buf)
	idx, err := f.outlines.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	return GlyphID(idx)
}

func (f *Face) buffer() *sfnt.Buffer {
	return f.bufs.Get().(*sfnt.Buffer)
}
