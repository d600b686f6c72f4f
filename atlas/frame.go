package atlas

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// RawFrame is one square RGBA8 frame, owned by the atlas once stored.
// Pix holds Size*Size*4 bytes in row-major order, 4*Size bytes per row.
type RawFrame struct {
	Size int
	Pix  []byte
}

// NewRawFrame returns a transparent frame with the given edge.
func NewRawFrame(size int) RawFrame {
	return RawFrame{Size: size, Pix: make([]byte, size*size*4)}
}

// FrameFromImage copies img into the top-left corner of a new frame of the
// given edge. The rest of the frame stays transparent.
func FrameFromImage(img image.Image, size int) (RawFrame, error) {
	b := img.Bounds()
	if b.Dx() > size || b.Dy() > size {
		return RawFrame{}, fmt.Errorf("%w: %dx%d into %d", ErrImageTooLarge, b.Dx(), b.Dy(), size)
	}
	f := NewRawFrame(size)
	draw.Copy(f.RGBA(), image.Point{}, img, b, draw.Src, nil)
	return f, nil
}

// RGBA returns an image that aliases the frame's pixels.
func (f RawFrame) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: 4 * f.Size,
		Rect:   image.Rect(0, 0, f.Size, f.Size),
	}
}

// Validate reports whether the frame is well formed for the given edge.
func (f RawFrame) Validate(size int) error {
	if f.Size != size {
		return fmt.Errorf("%w: frame %d, bucket %d", ErrFrameSize, f.Size, size)
	}
	if len(f.Pix) != size*size*4 {
		return fmt.Errorf("%w: %d bytes, want %d", ErrFrameSize, len(f.Pix), size*size*4)
	}
	return nil
}
