package spritekit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/internal/parallel"
)

// FrameConfig configures a FrameRunner.
type FrameConfig struct {
	// Workers is the number of draw goroutines. Zero uses GOMAXPROCS.
	Workers int
	// PruneEvery prunes the atlas after every n-th frame. Zero disables
	// automatic pruning.
	PruneEvery int
}

// DefaultFrameConfig returns a config that prunes once every 60 frames.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{Workers: 0, PruneEvery: 60}
}

// Validate checks the config for errors.
func (c *FrameConfig) Validate() error {
	if c.Workers < 0 {
		return &ConfigError{Field: "Workers", Reason: "must not be negative"}
	}
	if c.PruneEvery < 0 {
		return &ConfigError{Field: "PruneEvery", Reason: "must not be negative"}
	}
	return nil
}

// FrameStats summarises one Run.
type FrameStats struct {
	// Frame is the 1-based frame number.
	Frame uint64
	// Quads is the number of quads rendered across all layers.
	Quads int
	// Pruned is true if the atlas was pruned after this frame.
	Pruned bool
	Prune  atlas.PruneStats
}

// FrameRunner drives the draw, render, clear, prune cycle with the barriers
// the vertex buffers require: every draw finishes before rendering starts,
// and rendering finishes before the layers are cleared.
type FrameRunner struct {
	mu sync.Mutex

	atlas   *atlas.Context
	backend atlas.Backend
	cfg     FrameConfig
	layers  []*Layer
	pool    *parallel.WorkerPool

	frame  uint64
	closed bool
}

// NewFrameRunner creates a runner over the given layers. Layers that share
// a vertex buffer are cleared once per frame.
func NewFrameRunner(ctx *atlas.Context, backend atlas.Backend, cfg FrameConfig, layers ...*Layer) (*FrameRunner, error) {
	if ctx == nil {
		return nil, errors.New("spritekit: nil atlas context")
	}
	if backend == nil {
		return nil, atlas.ErrNilBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &FrameRunner{
		atlas:   ctx,
		backend: backend,
		cfg:     cfg,
		layers:  layers,
		pool:    parallel.NewWorkerPool(cfg.Workers),
	}
	Logger().Info("spritekit: frame runner started",
		"backend", backend.Name(),
		"workers", r.pool.Workers(),
		"layers", len(layers),
		"prune_every", cfg.PruneEvery)
	return r, nil
}

// Run executes one frame:
//
//  1. every draw runs on the worker pool; Run waits for all of them
//  2. dirty atlas buckets are rebuilt on the backend
//  3. render is called with the layers in read mode
//  4. every layer is cleared
//  5. every PruneEvery frames the atlas is pruned
//
// A failing or panicking draw aborts the frame after step 1; the layers are
// still cleared. render must release every view it takes before returning.
func (r *FrameRunner) Run(draws []func() error, render func(layers []*Layer) error) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return FrameStats{}, ErrRunnerClosed
	}

	r.frame++
	stats := FrameStats{Frame: r.frame}

	if err := r.pool.ExecuteAll(draws); err != nil {
		r.clearLayers()
		return stats, fmt.Errorf("spritekit: frame %d: draw: %w", r.frame, err)
	}
	if err := r.atlas.Update(r.backend); err != nil {
		r.clearLayers()
		return stats, fmt.Errorf("spritekit: frame %d: atlas update: %w", r.frame, err)
	}

	for _, l := range r.unique() {
		stats.Quads += l.Quads()
	}
	if render != nil {
		if err := render(r.layers); err != nil {
			r.clearLayers()
			return stats, fmt.Errorf("spritekit: frame %d: render: %w", r.frame, err)
		}
	}
	r.clearLayers()

	if r.cfg.PruneEvery > 0 && r.frame%uint64(r.cfg.PruneEvery) == 0 { //nolint:gosec // validated non-negative
		ps, err := r.atlas.Prune(r.backend)
		stats.Pruned, stats.Prune = true, ps
		if err != nil {
			return stats, fmt.Errorf("spritekit: frame %d: prune: %w", r.frame, err)
		}
	}
	return stats, nil
}

// Prune clears every layer and prunes the atlas immediately.
func (r *FrameRunner) Prune() (atlas.PruneStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return atlas.PruneStats{}, ErrRunnerClosed
	}
	r.clearLayers()
	return r.atlas.Prune(r.backend)
}

func (r *FrameRunner) clearLayers() {
	for _, l := range r.unique() {
		l.Clear()
	}
}

// unique returns one layer per distinct vertex buffer.
func (r *FrameRunner) unique() []*Layer {
	out := make([]*Layer, 0, len(r.layers))
outer:
	for _, l := range r.layers {
		for _, seen := range out {
			if seen.SharesBuffer(l) {
				continue outer
			}
		}
		out = append(out, l)
	}
	return out
}

// Layers returns the layers passed to NewFrameRunner.
func (r *FrameRunner) Layers() []*Layer { return r.layers }

// Frames returns the number of frames run so far.
func (r *FrameRunner) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Close stops the worker pool. The atlas and backend are left open.
// Close is idempotent.
func (r *FrameRunner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
}
