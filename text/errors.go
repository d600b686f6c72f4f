package text

import "errors"

var (
	// ErrEmptyGlyph is returned by Rasterize for glyphs without an outline,
	// such as the space character.
	ErrEmptyGlyph = errors.New("text: glyph has no outline")

	// ErrNilFace is returned when a cache is created without a face.
	ErrNilFace = errors.New("text: nil face")
)
