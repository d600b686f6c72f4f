package text

import (
	"errors"
	"testing"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/backend/software"
	"golang.org/x/image/font/gofont/goregular"
)

func loadGoRegular(t *testing.T) *Face {
	t.Helper()
	f, err := ParseFace(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFace() error = %v", err)
	}
	return f
}

func newTestCache(t *testing.T, cfg GlyphCacheConfig) (*GlyphCache, *atlas.Context) {
	t.Helper()
	ctx, err := atlas.NewContext(atlas.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	c, err := NewGlyphCache(ctx, loadGoRegular(t), cfg)
	if err != nil {
		t.Fatalf("NewGlyphCache() error = %v", err)
	}
	return c, ctx
}

// =============================================================================
// Face
// =============================================================================

func TestParseFace(t *testing.T) {
	f := loadGoRegular(t)
	if f.NumGlyphs() == 0 {
		t.Error("NumGlyphs() = 0")
	}
	if f.UnitsPerEm() <= 0 {
		t.Errorf("UnitsPerEm() = %d", f.UnitsPerEm())
	}
	if f.Name() == "" {
		t.Error("Name() is empty")
	}
	if f.GlyphIndex('A') == 0 {
		t.Error("GlyphIndex('A') = 0")
	}
}

func TestParseFaceInvalid(t *testing.T) {
	if _, err := ParseFace([]byte("not a font")); err == nil {
		t.Error("ParseFace(garbage) succeeded")
	}
}

// =============================================================================
// Shaping
// =============================================================================

func TestShape(t *testing.T) {
	f := loadGoRegular(t)
	glyphs := f.Shape("Hello", 16)
	if len(glyphs) != 5 {
		t.Fatalf("Shape() returned %d glyphs, want 5", len(glyphs))
	}
	for i, g := range glyphs {
		if g.Advance <= 0 {
			t.Errorf("glyph %d Advance = %v", i, g.Advance)
		}
		if i > 0 && g.X <= glyphs[i-1].X {
			t.Errorf("glyph %d X = %v not after %v", i, g.X, glyphs[i-1].X)
		}
	}
	if glyphs[0].ID != f.GlyphIndex('H') {
		t.Errorf("first glyph = %d, want %d", glyphs[0].ID, f.GlyphIndex('H'))
	}

	// Twice the size, twice the advance.
	small, large := Advance(glyphs), Advance(f.Shape("Hello", 32))
	if large < 1.9*small || large > 2.1*small {
		t.Errorf("advance at 32px = %v, at 16px = %v", large, small)
	}

	if f.Shape("", 16) != nil {
		t.Error("Shape(\"\") should be nil")
	}
}

func TestBidiRunsCoverString(t *testing.T) {
	tests := []string{"plain", "abc אבג def", "שלום"}
	for _, s := range tests {
		n := len([]rune(s))
		covered := make([]int, n)
		for _, r := range bidiRuns(s, n) {
			for i := r.start; i < r.end; i++ {
				covered[i]++
			}
		}
		for i, c := range covered {
			if c != 1 {
				t.Errorf("%q: rune %d covered %d times", s, i, c)
			}
		}
	}

	if runs := bidiRuns("plain", 5); len(runs) != 1 || runs[0].end != 5 {
		t.Errorf("bidiRuns(plain) = %+v, want one run", runs)
	}
}

// =============================================================================
// Rasterization
// =============================================================================

func TestRasterize(t *testing.T) {
	f := loadGoRegular(t)
	bm, err := f.Rasterize(f.GlyphIndex('H'), 16)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if bm.Width <= 0 || bm.Height <= 0 || bm.Width > 16 || bm.Height > 16 {
		t.Errorf("bitmap = %dx%d", bm.Width, bm.Height)
	}
	// The glyph sits above the baseline.
	if bm.BearingY >= 0 {
		t.Errorf("BearingY = %d, want negative", bm.BearingY)
	}
	if err := bm.Frame.Validate(atlas.BucketSize(mustBucket(bm.Width, bm.Height))); err != nil {
		t.Errorf("frame invalid: %v", err)
	}

	var covered int
	for i := 3; i < len(bm.Frame.Pix); i += 4 {
		if bm.Frame.Pix[i] > 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("rasterized glyph has no coverage")
	}
}

func mustBucket(w, h int) int {
	b, _ := atlas.BucketInfo(w, h)
	return b
}

func TestRasterizeSpace(t *testing.T) {
	f := loadGoRegular(t)
	if _, err := f.Rasterize(f.GlyphIndex(' '), 16); !errors.Is(err, ErrEmptyGlyph) {
		t.Errorf("Rasterize(space) error = %v, want ErrEmptyGlyph", err)
	}
}

// =============================================================================
// GlyphCache
// =============================================================================

func TestGlyphCacheConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GlyphCacheConfig
		wantErr bool
	}{
		{"default", DefaultGlyphCacheConfig(), false},
		{"zero capacity", GlyphCacheConfig{Size: 12}, true},
		{"zero size", GlyphCacheConfig{Capacity: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewGlyphCache(nil, nil, DefaultGlyphCacheConfig()); !errors.Is(err, ErrNilFace) {
		t.Errorf("NewGlyphCache(nil face) error = %v", err)
	}
}

func TestGlyphCacheDrawString(t *testing.T) {
	c, ctx := newTestCache(t, DefaultGlyphCacheConfig())
	l := spritekit.NewLayer()

	adv, err := c.DrawString(l, "to be", spritekit.Pt(0, 20), spritekit.White)
	if err != nil {
		t.Fatalf("DrawString() error = %v", err)
	}
	if adv <= 0 {
		t.Errorf("advance = %v", adv)
	}
	// The space has no quad.
	if l.Quads() != 4 {
		t.Errorf("Quads() = %d, want 4", l.Quads())
	}
	if l.Epoch() != ctx.Epoch() {
		t.Errorf("layer Epoch() = %d, want %d", l.Epoch(), ctx.Epoch())
	}
	// t, o, b, e and the empty space.
	if c.Len() != 5 || c.Rasterized() != 4 {
		t.Errorf("Len() = %d, Rasterized() = %d, want 5, 4", c.Len(), c.Rasterized())
	}

	// Drawing again hits the cache.
	if _, err := c.DrawString(l, "be", spritekit.Pt(0, 40), spritekit.White); err != nil {
		t.Fatalf("DrawString() error = %v", err)
	}
	if c.Rasterized() != 4 {
		t.Errorf("Rasterized() = %d after cached draw, want 4", c.Rasterized())
	}
	if c.Stats().Hits == 0 {
		t.Error("expected cache hits")
	}
}

func TestGlyphCacheEvictionFreesAtlas(t *testing.T) {
	c, ctx := newTestCache(t, GlyphCacheConfig{Capacity: 1, Size: 12})
	l := spritekit.NewLayer()

	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJ"
	if _, err := c.DrawString(l, letters, spritekit.Pt(0, 20), spritekit.White); err != nil {
		t.Fatalf("DrawString() error = %v", err)
	}
	evicted := c.Stats().Evictions
	if evicted < uint64(len(letters)-16) {
		t.Fatalf("Evictions = %d, want >= %d", evicted, len(letters)-16)
	}

	l.Clear()
	stats, err := ctx.Prune(software.New())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if uint64(stats.Reclaimed) != evicted {
		t.Errorf("Reclaimed = %d, want %d (one frame per evicted glyph)", stats.Reclaimed, evicted)
	}

	// Surviving glyphs still draw on the new epoch.
	if _, err := c.DrawString(l, "J", spritekit.Pt(0, 20), spritekit.White); err != nil {
		t.Errorf("DrawString() after prune error = %v", err)
	}
	if l.Epoch() != stats.Epoch {
		t.Errorf("layer Epoch() = %d, want %d", l.Epoch(), stats.Epoch)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d", c.Len())
	}
}
