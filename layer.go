package spritekit

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/spritekit/buffer"
)

// Layer is a batch of sprite quads that share a transform, tint and blend
// mode.
//
// Clones of a layer share one vertex buffer and one epoch pin. The view,
// model, color and blend fields are per clone, so a renderer can draw the
// same vertices several times with different settings.
//
// Thread safety: AddRect and the Sprite draw methods may be called from
// any number of goroutines at once. Read, Clear and Shrink must not
// overlap with drawing; see the package documentation.
type Layer struct {
	shared *layerShared

	view  Matrix
	model Matrix
	color RGBA
	blend BlendMode
}

type layerShared struct {
	vertices *buffer.Buffer[Vertex]

	// epoch is the atlas epoch of the first tracked quad since the last
	// Clear, or 0 when unpinned.
	epoch atomic.Uint64
}

// NewLayer creates an empty layer with identity transforms, white tint and
// alpha blending. opts configure the vertex buffer.
func NewLayer(opts ...buffer.Option) *Layer {
	return &Layer{
		shared: &layerShared{vertices: buffer.New[Vertex](opts...)},
		view:   Identity(),
		model:  Identity(),
		color:  White,
		blend:  BlendAlpha,
	}
}

// Clone returns a layer that draws into the same vertex buffer.
func (l *Layer) Clone() *Layer {
	c := *l
	return &c
}

// AddRect appends q as four vertices. If epoch is non-zero the layer must
// be unpinned or pinned to epoch; the first such call pins it. A mismatch
// panics with an error wrapping ErrEpochMismatch.
func (l *Layer) AddRect(epoch uint64, q Quad) {
	if err := l.TryAddRect(epoch, q); err != nil {
		panic(err)
	}
}

// TryAddRect is like AddRect but returns the epoch mismatch instead of
// panicking. Buffer contract violations still panic.
func (l *Layer) TryAddRect(epoch uint64, q Quad) error {
	if err := l.shared.pin(epoch); err != nil {
		return err
	}
	vs := q.vertices()
	w := l.shared.vertices.Map(VerticesPerQuad)
	defer w.Release()
	for i := range vs {
		w.Set(i, vs[i])
	}
	return nil
}

func (s *layerShared) pin(epoch uint64) error {
	if epoch == 0 || s.epoch.CompareAndSwap(0, epoch) {
		return nil
	}
	if cur := s.epoch.Load(); cur != epoch {
		return fmt.Errorf("%w: layer pinned to %d, quad from %d", ErrEpochMismatch, cur, epoch)
	}
	return nil
}

// Clear drops all quads and unpins the epoch. Capacity is kept.
func (l *Layer) Clear() {
	l.shared.vertices.Clear()
	l.shared.epoch.Store(0)
}

// Shrink releases vertex storage beyond n vertices. The layer must hold at
// most n vertices.
func (l *Layer) Shrink(n int) {
	l.shared.vertices.Shrink(n)
}

// Read enters the render phase and returns a view over every vertex drawn
// since the last Clear. The view must be released before drawing resumes.
func (l *Layer) Read() *buffer.ReadView[Vertex] {
	return l.shared.vertices.Get()
}

// TryRead is like Read but returns buffer.ErrReadWhileWriting instead of
// panicking when a draw is in progress.
func (l *Layer) TryRead() (*buffer.ReadView[Vertex], error) {
	return l.shared.vertices.TryGet()
}

// Len returns the number of vertices drawn since the last Clear.
func (l *Layer) Len() int { return l.shared.vertices.Len() }

// Quads returns the number of quads drawn since the last Clear.
func (l *Layer) Quads() int { return l.Len() / VerticesPerQuad }

// Cap returns the vertex capacity.
func (l *Layer) Cap() int { return l.shared.vertices.Cap() }

// Epoch returns the pinned epoch, or 0 if the layer is unpinned.
func (l *Layer) Epoch() uint64 { return l.shared.epoch.Load() }

// SharesBuffer reports whether l and o draw into the same vertex buffer.
func (l *Layer) SharesBuffer(o *Layer) bool { return l.shared == o.shared }

// View returns the view matrix.
func (l *Layer) View() Matrix { return l.view }

// SetView sets the view matrix of this clone.
func (l *Layer) SetView(m Matrix) { l.view = m }

// Model returns the model matrix.
func (l *Layer) Model() Matrix { return l.model }

// SetModel sets the model matrix of this clone.
func (l *Layer) SetModel(m Matrix) { l.model = m }

// Transform returns View * Model.
func (l *Layer) Transform() Matrix { return l.view.Multiply(l.model) }

// Color returns the layer tint.
func (l *Layer) Color() RGBA { return l.color }

// SetColor sets the tint of this clone.
func (l *Layer) SetColor(c RGBA) { l.color = c }

// Blend returns the blend mode.
func (l *Layer) Blend() BlendMode { return l.blend }

// SetBlend sets the blend mode of this clone.
func (l *Layer) SetBlend(m BlendMode) { l.blend = m }
