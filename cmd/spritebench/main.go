// Command spritebench draws procedurally generated sprites from many
// goroutines and prunes the atlas while sprites come and go.
//
// Usage:
//
//	spritebench [-config bench.yml] [-frames n] [-workers n] [-sprites n] [-backend name] [-v]
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gogpu/spritekit"
	"github.com/gogpu/spritekit/atlas"
	"github.com/gogpu/spritekit/backend"
	_ "github.com/gogpu/spritekit/backend/software"
	"github.com/gogpu/spritekit/text"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		frames     = flag.Int("frames", 0, "number of frames (overrides config)")
		workers    = flag.Int("workers", 0, "draw goroutines (overrides config)")
		sprites    = flag.Int("sprites", 0, "live sprites (overrides config)")
		backendArg = flag.String("backend", "", "atlas backend (overrides config)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "spritebench: %v\n", err)
			os.Exit(2)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.Frames = *frames
		case "workers":
			cfg.Workers = *workers
		case "sprites":
			cfg.Sprites = *sprites
		case "backend":
			cfg.Backend = *backendArg
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "spritebench: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	spritekit.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("spritebench failed", "err", err)
		os.Exit(1)
	}
}

type bench struct {
	cfg    Config
	log    *slog.Logger
	rng    *rand.Rand
	atlas  *atlas.Context
	sprite []*spritekit.Sprite
}

func run(cfg Config, logger *slog.Logger) error {
	be, err := backend.Open(cfg.Backend)
	if err != nil {
		return err
	}

	ctx, err := atlas.NewContext(atlas.Config{MaxSize: cfg.MaxAtlas, InitialFrames: 64})
	if err != nil {
		return err
	}
	defer ctx.Close(be)

	b := &bench{
		cfg:   cfg,
		log:   logger,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)), //nolint:gosec // benchmark data
		atlas: ctx,
	}
	start := time.Now()
	if err := b.loadSprites(); err != nil {
		return err
	}
	logger.Info("sprites loaded", "count", len(b.sprite), "elapsed", time.Since(start))

	face, err := text.ParseFace(goregular.TTF)
	if err != nil {
		return err
	}
	glyphs, err := text.NewGlyphCache(ctx, face, text.DefaultGlyphCacheConfig())
	if err != nil {
		return err
	}

	world := spritekit.NewLayer()
	world.SetView(spritekit.Ortho(1920, 1080))
	hud := spritekit.NewLayer()
	hud.SetView(spritekit.Ortho(1920, 1080))

	runner, err := spritekit.NewFrameRunner(ctx, be,
		spritekit.FrameConfig{Workers: cfg.Workers, PruneEvery: cfg.PruneEvery},
		world, hud)
	if err != nil {
		return err
	}
	defer runner.Close()

	var (
		totals  spritekit.FrameStats
		bytes   int
		scratch []byte
	)
	render := func(layers []*spritekit.Layer) error {
		for _, l := range layers {
			view := l.Read()
			scratch = spritekit.EncodeVertices(scratch[:0], view)
			view.Release()
			bytes += len(scratch)
		}
		return nil
	}

	pb := progressbar.Default(int64(cfg.Frames), "frames")
	defer pb.Close()

	start = time.Now()
	for frame := range cfg.Frames {
		draws := b.draws(world, frame)
		draws = append(draws, func() error {
			_, err := glyphs.DrawString(hud, fmt.Sprintf("%s %d", cfg.Text, frame), spritekit.Pt(16, 32), spritekit.White)
			return err
		})

		stats, err := runner.Run(draws, render)
		if err != nil {
			return err
		}
		totals.Quads += stats.Quads
		if stats.Pruned {
			totals.Prune.Reclaimed += stats.Prune.Reclaimed
			totals.Prune.Dropped += stats.Prune.Dropped
			totals.Prune.Epoch = stats.Prune.Epoch
		}

		if cfg.DropEvery > 0 && (frame+1)%cfg.DropEvery == 0 {
			if err := b.replace(b.rng.IntN(len(b.sprite))); err != nil {
				return err
			}
		}
		_ = pb.Add(1)
	}
	elapsed := time.Since(start)

	as := ctx.Stats()
	logger.Info("done",
		"frames", cfg.Frames,
		"elapsed", elapsed,
		"fps", float64(cfg.Frames)/elapsed.Seconds(),
		"quads", totals.Quads,
		"vertex_bytes", bytes,
		"epoch", as.Epoch,
		"atlas_frames", as.Frames,
		"reclaimed", totals.Prune.Reclaimed,
		"dropped", totals.Prune.Dropped,
		"glyphs", glyphs.Len())
	return nil
}

// loadSprites builds cfg.Sprites sprites concurrently.
func (b *bench) loadSprites() error {
	b.sprite = make([]*spritekit.Sprite, b.cfg.Sprites)
	seeds := make([]uint64, len(b.sprite))
	for i := range seeds {
		seeds[i] = b.rng.Uint64()
	}

	var g errgroup.Group
	g.SetLimit(max(b.cfg.Workers, 4))
	for i := range b.sprite {
		g.Go(func() error {
			s, err := newSprite(b.atlas, seeds[i])
			if err != nil {
				return fmt.Errorf("sprite %d: %w", i, err)
			}
			b.sprite[i] = s
			return nil
		})
	}
	return g.Wait()
}

// replace releases sprite i and loads a new one in its place.
func (b *bench) replace(i int) error {
	b.sprite[i].Release()
	s, err := newSprite(b.atlas, b.rng.Uint64())
	if err != nil {
		return err
	}
	b.sprite[i] = s
	return nil
}

// draws splits cfg.Quads sprite draws across the workers.
func (b *bench) draws(layer *spritekit.Layer, frame int) []func() error {
	n := max(b.cfg.Workers, 1)
	if b.cfg.Workers == 0 {
		n = 8
	}
	per := b.cfg.Quads / n
	draws := make([]func() error, n)
	for w := range draws {
		draws[w] = func() error {
			for i := range per {
				q := w*per + i
				s := b.sprite[q%len(b.sprite)]
				angle := float64(q+frame) * 0.01
				err := s.DrawOp(layer, spritekit.DrawOp{
					Frame:    frame / 4,
					Position: spritekit.Pt(960+400*math.Cos(angle), 540+400*math.Sin(angle)),
					Rotation: angle,
					Color:    spritekit.White,
					Tracked:  true,
				})
				if err != nil {
					return err
				}
			}
			return nil
		}
	}
	return draws
}

// newSprite generates an animated disc sprite from seed.
func newSprite(ctx *atlas.Context, seed uint64) (*spritekit.Sprite, error) {
	rng := rand.New(rand.NewPCG(seed, seed>>1)) //nolint:gosec // benchmark data
	size := 8 + rng.IntN(57)
	frames := 1 + rng.IntN(4)
	tint := color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 255} //nolint:gosec // < 256

	images := make([]image.Image, frames)
	for f := range images {
		images[f] = disc(size, float64(f+1)/float64(frames), tint)
	}
	return spritekit.LoadSprite(ctx, spritekit.SpriteDesc{Width: size, Height: size, Frames: frames}, images)
}

// disc draws a filled circle whose radius is frac of the half edge.
func disc(size int, frac float64, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := frac * float64(size) / 2
	mid := float64(size) / 2
	for y := range size {
		for x := range size {
			if math.Hypot(float64(x)+0.5-mid, float64(y)+0.5-mid) <= r {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}
