// Package software provides a CPU backend for atlas textures.
//
// Texture arrays live in ordinary Go memory. The backend is used for
// headless rendering, tests, and as a fallback when no GPU device is
// available. Importing the package registers it under backend.Software.
package software

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/backend"
)

func init() {
	backend.Register(backend.Software, func() atlas.Backend { return New() })
}

// Backend builds texture arrays in CPU memory.
//
// Backend is safe for concurrent use.
type Backend struct {
	mu       sync.Mutex
	live     int
	rebuilds int
}

// New creates a software backend.
func New() *Backend {
	return &Backend{}
}

// Name returns backend.Software.
func (b *Backend) Name() string { return backend.Software }

// RebuildArray copies frames into a new texture array.
func (b *Backend) RebuildArray(desc atlas.ArrayDesc, frames []atlas.RawFrame) (atlas.Texture, error) {
	if desc.Layers != len(frames) {
		return nil, fmt.Errorf("software: %s: %d layers described, %d frames given", desc.Label, desc.Layers, len(frames))
	}

	tex := &TextureArray{
		label:  desc.Label,
		size:   desc.Size,
		layers: make([][]byte, len(frames)),
	}
	for i, f := range frames {
		if err := f.Validate(desc.Size); err != nil {
			return nil, fmt.Errorf("software: %s layer %d: %w", desc.Label, i, err)
		}
		tex.layers[i] = append([]byte(nil), f.Pix...)
	}

	b.mu.Lock()
	b.live++
	b.rebuilds++
	b.mu.Unlock()

	backend.Logger().Debug("software: texture array built",
		"label", desc.Label, "size", desc.Size, "layers", desc.Layers)
	return tex, nil
}

// ReleaseArray frees a texture array built by this backend.
func (b *Backend) ReleaseArray(tex atlas.Texture) {
	t, ok := tex.(*TextureArray)
	if !ok || !t.released.CompareAndSwap(false, true) {
		return
	}
	t.layers = nil

	b.mu.Lock()
	b.live--
	b.mu.Unlock()
}

// Live returns the number of texture arrays built and not yet released.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Rebuilds returns the number of texture arrays built so far.
func (b *Backend) Rebuilds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rebuilds
}

// TextureArray is a CPU-side 2D texture array of RGBA8 layers.
type TextureArray struct {
	label    string
	size     int
	layers   [][]byte
	released atomic.Bool
}

// Label returns the debug label.
func (t *TextureArray) Label() string { return t.label }

// Width returns the layer width in pixels.
func (t *TextureArray) Width() int { return t.size }

// Height returns the layer height in pixels.
func (t *TextureArray) Height() int { return t.size }

// Layers returns the number of layers.
func (t *TextureArray) Layers() int { return len(t.layers) }

// Layer returns the pixels of layer i. The slice must not be modified.
func (t *TextureArray) Layer(i int) []byte { return t.layers[i] }

// Released reports whether the array has been released.
func (t *TextureArray) Released() bool { return t.released.Load() }
