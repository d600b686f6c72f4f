package spritekit

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/backend/software"
	"github.com/gogpu/spritekit/internal/parallel"
)

func TestFrameConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     FrameConfig
		wantErr bool
	}{
		{"default", DefaultFrameConfig(), false},
		{"no pruning", FrameConfig{Workers: 2}, false},
		{"negative workers", FrameConfig{Workers: -1}, true},
		{"negative prune", FrameConfig{PruneEvery: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewFrameRunnerErrors(t *testing.T) {
	ctx := newTestContext(t)
	if _, err := NewFrameRunner(ctx, nil, DefaultFrameConfig()); !errors.Is(err, atlas.ErrNilBackend) {
		t.Errorf("NewFrameRunner(nil backend) error = %v", err)
	}
	if _, err := NewFrameRunner(nil, software.New(), DefaultFrameConfig()); err == nil {
		t.Error("NewFrameRunner(nil ctx) succeeded")
	}
	var cfgErr *ConfigError
	if _, err := NewFrameRunner(ctx, software.New(), FrameConfig{Workers: -2}); !errors.As(err, &cfgErr) {
		t.Errorf("NewFrameRunner(bad config) error = %v", err)
	}
}

func TestFrameRunnerRun(t *testing.T) {
	ctx := newTestContext(t)
	be := software.New()
	layer := NewLayer()
	clone := layer.Clone()
	clone.SetBlend(BlendAdditive)

	keep := mustSprite(t, ctx, 16, 4, 0)
	dying := mustSprite(t, ctx, 16, 2, 4)

	r, err := NewFrameRunner(ctx, be, FrameConfig{Workers: 4, PruneEvery: 2}, layer, clone)
	if err != nil {
		t.Fatalf("NewFrameRunner() error = %v", err)
	}
	defer r.Close()

	const goroutines, perG = 8, 10
	draws := make([]func() error, goroutines)
	for g := range draws {
		draws[g] = func() error {
			for i := range perG {
				if err := keep.DrawTracked(layer, i, Pt(float64(g), float64(i)), White); err != nil {
					return err
				}
			}
			return nil
		}
	}

	var rendered int
	stats, err := r.Run(draws, func(ls []*Layer) error {
		if len(ls) != 2 || ls[1].Blend() != BlendAdditive {
			t.Errorf("render got %d layers", len(ls))
		}
		v := ls[0].Read()
		defer v.Release()
		rendered = v.Len()
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rendered != goroutines*perG*VerticesPerQuad {
		t.Errorf("rendered %d vertices, want %d", rendered, goroutines*perG*VerticesPerQuad)
	}
	if stats.Frame != 1 || stats.Quads != goroutines*perG || stats.Pruned {
		t.Errorf("frame 1 stats = %+v", stats)
	}
	if layer.Len() != 0 || layer.Epoch() != 0 {
		t.Errorf("layer not cleared: Len() = %d, Epoch() = %d", layer.Len(), layer.Epoch())
	}
	if be.Live() != 1 {
		t.Errorf("backend Live() = %d, want 1", be.Live())
	}

	dying.Release()
	stats, err = r.Run(nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !stats.Pruned || stats.Prune.Reclaimed != 2 {
		t.Errorf("frame 2 stats = %+v, want prune reclaiming 2", stats)
	}
	if keep.Epoch() != ctx.Epoch() || keep.TextureID() != 0 {
		t.Errorf("survivor Epoch() = %d, TextureID() = %d", keep.Epoch(), keep.TextureID())
	}
	if r.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", r.Frames())
	}

	// Drawing resumes on the new epoch.
	if _, err := r.Run([]func() error{func() error {
		return keep.DrawTracked(layer, 0, Pt(0, 0), White)
	}}, nil); err != nil {
		t.Errorf("Run() after prune error = %v", err)
	}
}

func TestFrameRunnerDrawFailureClearsLayers(t *testing.T) {
	ctx := newTestContext(t)
	layer := NewLayer()
	r, err := NewFrameRunner(ctx, software.New(), FrameConfig{Workers: 2}, layer)
	if err != nil {
		t.Fatalf("NewFrameRunner() error = %v", err)
	}
	defer r.Close()

	errDraw := errors.New("draw failed")
	var rendered atomic.Bool
	_, err = r.Run([]func() error{
		func() error { layer.AddRect(0, testQuad()); return nil },
		func() error { return errDraw },
	}, func([]*Layer) error {
		rendered.Store(true)
		return nil
	})
	if !errors.Is(err, errDraw) {
		t.Errorf("Run() error = %v, want errDraw", err)
	}
	if rendered.Load() {
		t.Error("render ran after a failed draw")
	}
	if layer.Len() != 0 {
		t.Errorf("layer not cleared after failed frame: Len() = %d", layer.Len())
	}
}

func TestFrameRunnerEpochMismatchPanicIsReported(t *testing.T) {
	ctx := newTestContext(t)
	layer := NewLayer()
	r, err := NewFrameRunner(ctx, software.New(), FrameConfig{Workers: 2}, layer)
	if err != nil {
		t.Fatalf("NewFrameRunner() error = %v", err)
	}
	defer r.Close()

	_, err = r.Run([]func() error{
		func() error { layer.AddRect(1, testQuad()); return nil },
		func() error { layer.AddRect(2, testQuad()); return nil },
	}, nil)

	var pe *parallel.PanicError
	if !errors.As(err, &pe) || !errors.Is(err, ErrEpochMismatch) {
		t.Errorf("Run() error = %v, want recovered ErrEpochMismatch", err)
	}
	if layer.Len() != 0 {
		t.Errorf("layer not cleared: Len() = %d", layer.Len())
	}
}

func TestFrameRunnerClose(t *testing.T) {
	r, err := NewFrameRunner(newTestContext(t), software.New(), DefaultFrameConfig())
	if err != nil {
		t.Fatalf("NewFrameRunner() error = %v", err)
	}
	r.Close()
	r.Close()

	if _, err := r.Run(nil, nil); !errors.Is(err, ErrRunnerClosed) {
		t.Errorf("Run() after Close error = %v, want ErrRunnerClosed", err)
	}
	if _, err := r.Prune(); !errors.Is(err, ErrRunnerClosed) {
		t.Errorf("Prune() after Close error = %v, want ErrRunnerClosed", err)
	}
}
