package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// GlyphID indexes a glyph within a font.
type GlyphID uint16

// Glyph is one positioned glyph of a shaped string. Positions are relative
// to the pen start on the baseline, with y pointing down.
type Glyph struct {
	ID GlyphID
	// Cluster is the rune index in the source string.
	Cluster int
	X, Y    float64
	Advance float64
}

// shapers pools HarfbuzzShaper values, which are not safe for concurrent
// use.
var shapers = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape lays out s at the given pixel size. Bidirectional runs are shaped
// separately and returned in visual order.
func (f *Face) Shape(s string, size float64) []Glyph {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	face := font.NewFace(f.shaping)
	hb := shapers.Get().(*shaping.HarfbuzzShaper)
	defer shapers.Put(hb)

	var (
		out []Glyph
		pen float64
	)
	for _, r := range bidiRuns(s, len(runes)) {
		input := shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: r.dir,
			Face:      face,
			Size:      fixed.Int26_6(size * 64),
			Script:    detectScript(runes[r.start:r.end]),
			Language:  language.NewLanguage("en"),
		}
		output := hb.Shape(input)
		for _, g := range output.Glyphs {
			adv := fixedToFloat(g.Advance)
			out = append(out, Glyph{
				ID:      GlyphID(uint16(g.GlyphID)), //nolint:gosec // OpenType glyph ids are 16-bit
				Cluster: g.TextIndex(),
				X:       pen + fixedToFloat(g.XOffset),
				Y:       -fixedToFloat(g.YOffset),
				Advance: adv,
			})
			pen += adv
		}
	}
	return out
}

// Advance returns the total advance of glyphs.
func Advance(glyphs []Glyph) float64 {
	var w float64
	for _, g := range glyphs {
		w += g.Advance
	}
	return w
}

type run struct {
	start, end int
	dir        di.Direction
}

// bidiRuns splits s into directional runs in visual order. Indices are rune
// offsets; end is exclusive.
func bidiRuns(s string, n int) []run {
	whole := []run{{start: 0, end: n, dir: di.DirectionLTR}}

	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return whole
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return whole
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		br := ordering.Run(i)
		// Pos returns rune indices with an inclusive end.
		start, end := br.Pos()
		end = min(end+1, n)
		if start >= end {
			continue
		}
		dir := di.DirectionLTR
		if br.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = append(runs, run{start: start, end: end, dir: dir})
	}
	if len(runs) == 0 {
		return whole
	}
	return runs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
