package spritekit

import (
	"unsafe"

	"github.com/gogpu/spritekit/buffer"
	"honnef.co/go/safeish"
)

// Vertex is one corner of a sprite quad as uploaded to the GPU.
//
// All fields are 4-byte scalars so the struct has no padding and its memory
// layout matches the vertex buffer layout described by VertexAttributes.
type Vertex struct {
	// Position is the quad center in layer space.
	Position [2]float32
	// Offset is this corner relative to the center, before rotation.
	Offset [2]float32
	// Rotation is the quad rotation in radians.
	Rotation float32
	// Color is the tint, packed by RGBA.Pack.
	Color uint32
	// Bucket selects the atlas texture array.
	Bucket uint32
	// Texture is the layer index within the bucket's array.
	Texture uint32
	// UV is the texture coordinate of this corner.
	UV [2]float32
	// Channel is the component index the texture id was resolved for.
	Channel uint32
}

// VertexSize is the size of a Vertex in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// VerticesPerQuad is the number of vertices written per draw.
const VerticesPerQuad = 4

// Quad describes one textured rectangle.
type Quad struct {
	Position Point
	// Size is the rectangle extent in layer units.
	Size     Point
	Rotation float64
	Color    RGBA
	Bucket   uint32
	Texture  uint32
	// UV is the bottom-right texture coordinate; the top-left is (0,0).
	// Sprites smaller than their bucket use less than the full layer.
	UV      Point
	Channel uint32
}

// vertices expands q into its four corners in the order top-left,
// top-right, bottom-left, bottom-right.
func (q *Quad) vertices() [VerticesPerQuad]Vertex {
	hw, hh := float32(q.Size.X/2), float32(q.Size.Y/2)
	u, v := float32(q.UV.X), float32(q.UV.Y)
	base := Vertex{
		Position: q.Position.vec2(),
		Rotation: float32(q.Rotation),
		Color:    q.Color.Pack(),
		Bucket:   q.Bucket,
		Texture:  q.Texture,
		Channel:  q.Channel,
	}
	out := [VerticesPerQuad]Vertex{base, base, base, base}
	out[0].Offset, out[0].UV = [2]float32{-hw, -hh}, [2]float32{0, 0}
	out[1].Offset, out[1].UV = [2]float32{hw, -hh}, [2]float32{u, 0}
	out[2].Offset, out[2].UV = [2]float32{-hw, hh}, [2]float32{0, v}
	out[3].Offset, out[3].UV = [2]float32{hw, hh}, [2]float32{u, v}
	return out
}

// EncodeVertices appends the raw bytes of every vertex visible through view
// to dst, ready for a vertex buffer upload.
func EncodeVertices(dst []byte, view *buffer.ReadView[Vertex]) []byte {
	if need := view.Len() * VertexSize; cap(dst)-len(dst) < need {
		grown := make([]byte, len(dst), len(dst)+need)
		copy(grown, dst)
		dst = grown
	}
	for chunk := range view.Chunks() {
		dst = append(dst, safeish.SliceCast[[]byte](chunk)...)
	}
	return dst
}

// AppendQuadIndices appends two triangles per quad for quads quads,
// starting at quad first.
func AppendQuadIndices(dst []uint32, first, quads int) []uint32 {
	for q := first; q < first+quads; q++ {
		b := uint32(q * VerticesPerQuad) //nolint:gosec // vertex counts fit in uint32
		dst = append(dst, b, b+1, b+2, b+2, b+1, b+3)
	}
	return dst
}
