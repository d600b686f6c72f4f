package text

import (
	"fmt"
	"image"

	"github.com/gogpu/spritekit/atlas"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Bitmap is a rasterized glyph.
type Bitmap struct {
	// Width and Height are the extent of the coverage in pixels.
	Width, Height int
	// BearingX and BearingY locate the bitmap's top-left corner relative
	// to the pen on the baseline, y down.
	BearingX, BearingY int
	// Frame holds premultiplied white coverage in its top-left corner,
	// padded to the atlas bucket edge.
	Frame atlas.RawFrame
}

// Rasterize renders glyph id at ppem pixels per em. Glyphs without an
// outline return ErrEmptyGlyph.
func (f *Face) Rasterize(id GlyphID, ppem float64) (Bitmap, error) {
	buf := f.buffer()
	defer f.bufs.Put(buf)

	segs, err := f.outlines.LoadGlyph(buf, sfnt.GlyphIndex(id), fixed.Int26_6(ppem*64), nil)
	if err != nil {
		return Bitmap{}, fmt.Errorf("text: load glyph %d: %w", id, err)
	}
	if len(segs) == 0 {
		return Bitmap{}, ErrEmptyGlyph
	}

	b := segs.Bounds()
	minX, minY := b.Min.X.Floor(), b.Min.Y.Floor()
	w, h := b.Max.X.Ceil()-minX, b.Max.Y.Ceil()-minY
	if w <= 0 || h <= 0 {
		return Bitmap{}, ErrEmptyGlyph
	}

	origin := fixed.P(minX, minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		p = p.Sub(origin)
		return float32(p.X) / 64, float32(p.Y) / 64
	}

	z := vector.NewRasterizer(w, h)
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := pt(s.Args[0])
			z.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(s.Args[0])
			z.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			dx, dy := pt(s.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	_, padded := atlas.BucketInfo(w, h)
	frame := atlas.NewRawFrame(padded)
	// White through the coverage mask, premultiplied.
	for y := range h {
		row := frame.Pix[y*4*padded:]
		for x := range w {
			a := mask.Pix[y*mask.Stride+x]
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = a, a, a, a
		}
	}

	return Bitmap{
		Width:    w,
		Height:   h,
		BearingX: minX,
		BearingY: minY,
		Frame:    frame,
	}, nil
}
