// Package spritekit draws sprites from many goroutines into shared vertex
// layers backed by a compacting texture atlas.
//
// # Overview
//
// A program owns one [atlas.Context]. Sprites are loaded into it with
// [LoadSprite] or [NewSprite]; each sprite occupies a run of consecutive
// frames in the atlas bucket that matches its size. Drawing a sprite onto a
// [Layer] reserves four vertex slots in the layer's [buffer.Buffer] without
// taking a lock, so any number of goroutines can draw at once.
//
// Periodically the atlas is pruned: frames belonging to sprites that were
// released or garbage collected are removed and the survivors are shifted
// left. Pruning advances the atlas epoch and rewrites every surviving
// sprite's texture id in place.
//
// # Epochs
//
// A layer is pinned to the epoch of the first tracked quad drawn into it
// since the last [Layer.Clear]. Drawing a sprite from another epoch onto the
// same unflushed layer panics with an error wrapping [ErrEpochMismatch],
// since its texture id would refer to a different atlas layout. Clear
// layers before or after calling Prune.
//
// # Frame protocol
//
// Drawing and rendering must never overlap: the vertex buffer panics if a
// reader enters while a writer is active, or the other way round. A
// [FrameRunner] runs one frame with two barriers:
//
//	runner, _ := spritekit.NewFrameRunner(ctx, backend, spritekit.DefaultFrameConfig(), layer)
//	defer runner.Close()
//
//	stats, err := runner.Run(draws, func(layers []*spritekit.Layer) error {
//	    view := layers[0].Read()
//	    defer view.Release()
//	    upload(spritekit.EncodeVertices(nil, view))
//	    return nil
//	})
//
// # Logging
//
// spritekit is silent by default. Call [SetLogger] to route diagnostics
// from this package and its sub-packages to a [log/slog] logger.
package spritekit
