// Package native builds atlas textures on a gogpu/wgpu HAL device.
//
// Each bucket becomes one RGBA8 2D texture array with a matching
// 2D-array view. Frames are uploaded layer by layer with
// Queue.WriteTexture.
package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/backend"
)

// Format is the texture format of every atlas array.
const Format = gputypes.TextureFormatRGBA8Unorm

// Backend implements atlas.Backend on a HAL device and queue.
//
// Thread Safety: Backend is safe for concurrent use. The device and queue
// must outlive it.
type Backend struct {
	device hal.Device
	queue  hal.Queue
	limits gputypes.Limits

	mu   sync.Mutex
	live int
}

// Option configures a Backend.
type Option func(*Backend)

// WithLimits sets the device limits used to validate texture arrays.
// Default: gputypes.DefaultLimits()
func WithLimits(limits gputypes.Limits) Option {
	return func(b *Backend) {
		b.limits = limits
	}
}

// New creates a backend on the given device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	b := &Backend{
		device: device,
		queue:  queue,
		limits: gputypes.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// halProvider is implemented by providers that expose HAL handles directly.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a backend on the device of a shared GPU context.
// The provider must hand out hal.Device and hal.Queue values, either from
// Device and Queue or from HalDevice and HalQueue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilDevice
	}
	var dev, q any = provider.Device(), provider.Queue()
	if hp, ok := provider.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	}
	device, ok := dev.(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: device is %T", ErrNotHAL, dev)
	}
	queue, ok := q.(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: queue is %T", ErrNotHAL, q)
	}
	return New(device, queue, opts...)
}

// Register makes b available as backend.Native.
func Register(b *Backend) {
	backend.Register(backend.Native, func() atlas.Backend { return b })
	backend.Logger().Info("native: backend registered")
}

// Name returns backend.Native.
func (b *Backend) Name() string { return backend.Native }

// RebuildArray creates a texture array with one layer per frame and uploads
// the frames.
func (b *Backend) RebuildArray(desc atlas.ArrayDesc, frames []atlas.RawFrame) (atlas.Texture, error) {
	if desc.Layers != len(frames) || len(frames) == 0 {
		return nil, fmt.Errorf("%w: %d layers described, %d frames given", ErrInvalidArray, desc.Layers, len(frames))
	}
	if desc.Size <= 0 || uint32(desc.Size) > b.limits.MaxTextureDimension2D { //nolint:gosec // checked positive
		return nil, fmt.Errorf("%w: size %d exceeds %d", ErrInvalidArray, desc.Size, b.limits.MaxTextureDimension2D)
	}
	if uint32(len(frames)) > b.limits.MaxTextureArrayLayers { //nolint:gosec // len is non-negative
		return nil, fmt.Errorf("%w: %d layers exceeds %d", ErrInvalidArray, len(frames), b.limits.MaxTextureArrayLayers)
	}

	size := uint32(desc.Size)     //nolint:gosec // validated above
	layers := uint32(len(frames)) //nolint:gosec // validated above

	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %s: %w", desc.Label, err)
	}

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label + "_view",
		Format:          Format,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: layers,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("native: create texture view %s: %w", desc.Label, err)
	}

	for i, f := range frames {
		if err := f.Validate(desc.Size); err != nil {
			b.destroy(tex, view)
			return nil, fmt.Errorf("native: %s layer %d: %w", desc.Label, i, err)
		}
		err := b.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture: tex,
				Origin:  hal.Origin3D{Z: uint32(i)}, //nolint:gosec // bounded by layers
				Aspect:  gputypes.TextureAspectAll,
			},
			f.Pix,
			&hal.ImageDataLayout{
				BytesPerRow:  size * 4,
				RowsPerImage: size,
			},
			&hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		)
		if err != nil {
			b.destroy(tex, view)
			return nil, fmt.Errorf("native: upload %s layer %d: %w", desc.Label, i, err)
		}
	}

	b.mu.Lock()
	b.live++
	b.mu.Unlock()

	backend.Logger().Debug("native: texture array uploaded",
		"label", desc.Label, "size", desc.Size, "layers", len(frames))

	return &TextureArray{
		texture: tex,
		view:    view,
		size:    desc.Size,
		layers:  len(frames),
	}, nil
}

// ReleaseArray destroys a texture array created by this backend.
func (b *Backend) ReleaseArray(tex atlas.Texture) {
	t, ok := tex.(*TextureArray)
	if !ok {
		backend.Logger().Warn("native: release of foreign texture", "type", fmt.Sprintf("%T", tex))
		return
	}
	if !t.released.CompareAndSwap(false, true) {
		return
	}
	b.destroy(t.texture, t.view)

	b.mu.Lock()
	b.live--
	b.mu.Unlock()
}

// Live returns the number of texture arrays not yet released.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

func (b *Backend) destroy(tex hal.Texture, view hal.TextureView) {
	if view != nil {
		b.device.DestroyTextureView(view)
	}
	if tex != nil {
		b.device.DestroyTexture(tex)
	}
}

// TextureArray is a bucket texture on the GPU.
type TextureArray struct {
	texture  hal.Texture
	view     hal.TextureView
	size     int
	layers   int
	released atomic.Bool
}

// Width returns the layer width in pixels.
func (t *TextureArray) Width() int { return t.size }

// Height returns the layer height in pixels.
func (t *TextureArray) Height() int { return t.size }

// Layers returns the number of array layers.
func (t *TextureArray) Layers() int { return t.layers }

// Texture returns the HAL texture.
func (t *TextureArray) Texture() hal.Texture { return t.texture }

// View returns the 2D-array view used for binding.
func (t *TextureArray) View() hal.TextureView { return t.view }
