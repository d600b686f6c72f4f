package spritekit

import "fmt"

// BlendMode selects how a layer's quads are composited onto the target.
// The renderer maps each mode to a fixed-function blend state.
type BlendMode uint8

const (
	// BlendAlpha is source-over with straight alpha.
	BlendAlpha BlendMode = iota
	// BlendAdditive adds source color weighted by source alpha.
	BlendAdditive
	// BlendMultiply multiplies source and destination color.
	BlendMultiply
	// BlendReplace writes the source unchanged.
	BlendReplace
)

// String returns the mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendAlpha:
		return "Alpha"
	case BlendAdditive:
		return "Additive"
	case BlendMultiply:
		return "Multiply"
	case BlendReplace:
		return "Replace"
	default:
		return fmt.Sprintf("BlendMode(%d)", uint8(m))
	}
}
