package spritekit

import (
	"image/color"
	"testing"
)

func TestRGBAPack(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want uint32
	}{
		{"white", White, 0xffffffff},
		{"transparent", Transparent, 0},
		{"red", Red, 0xff0000ff},
		{"blue", Blue, 0xffff0000},
		{"clamped", RGBA{R: 2, G: -1, B: 0, A: 1}, 0xff0000ff},
		{"half alpha", RGBA{R: 0, G: 0, B: 0, A: 0.5}, 0x80000000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Pack(); got != tt.want {
				t.Errorf("Pack() = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 0xffffffff, 0x80402010, 0x01020304} {
		if got := Unpack(v).Pack(); got != v {
			t.Errorf("Unpack(%#08x).Pack() = %#08x", v, got)
		}
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"#fff", 0xffffffff},
		{"ff0000", 0xff0000ff},
		{"00ff0080", 0x8000ff00},
		{"bogus", 0xff000000},
	}
	for _, tt := range tests {
		if got := Hex(tt.in).Pack(); got != tt.want {
			t.Errorf("Hex(%q).Pack() = %#08x, want %#08x", tt.in, got, tt.want)
		}
	}
}

func TestFromColor(t *testing.T) {
	c := FromColor(color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	if c.Pack() != 0x800000ff {
		t.Errorf("FromColor().Pack() = %#08x, want 0x800000ff", c.Pack())
	}
}

func TestBlendModeString(t *testing.T) {
	if BlendAdditive.String() != "Additive" {
		t.Errorf("BlendAdditive.String() = %q", BlendAdditive.String())
	}
	if BlendMode(9).String() != "BlendMode(9)" {
		t.Errorf("BlendMode(9).String() = %q", BlendMode(9).String())
	}
}
