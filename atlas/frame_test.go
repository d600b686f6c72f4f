package atlas

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFrameFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 13, 25))
	for y := 20; y < 25; y++ {
		for x := 10; x < 13; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	f, err := FrameFromImage(img, 8)
	if err != nil {
		t.Fatalf("FrameFromImage() error = %v", err)
	}
	if err := f.Validate(8); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	rgba := f.RGBA()
	if got := rgba.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v, want opaque red", got)
	}
	if got := rgba.RGBAAt(2, 4); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (2,4) = %v, want opaque red", got)
	}
	if got := rgba.RGBAAt(3, 0); got != (color.RGBA{}) {
		t.Errorf("pixel (3,0) = %v, want transparent", got)
	}
	if got := rgba.RGBAAt(7, 7); got != (color.RGBA{}) {
		t.Errorf("pixel (7,7) = %v, want transparent", got)
	}
}

func TestFrameFromImage_TooLarge(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 4))
	_, err := FrameFromImage(img, 8)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("FrameFromImage() error = %v, want ErrImageTooLarge", err)
	}
}

func TestRawFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   RawFrame
		size    int
		wantErr bool
	}{
		{"ok", NewRawFrame(16), 16, false},
		{"wrong size", NewRawFrame(8), 16, true},
		{"short pix", RawFrame{Size: 8, Pix: make([]byte, 10)}, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate(tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFrameSize) {
				t.Errorf("Validate() error = %v, want ErrFrameSize", err)
			}
		})
	}
}
