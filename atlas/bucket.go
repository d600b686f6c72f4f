package atlas

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Bucket is one size class of the atlas: an ordered list of frames of the
// same edge, the sprites that own them, and the texture built from them.
//
// Bucket is safe for concurrent StoreFrames and StoreSprite calls. Prune
// expects the caller to hold exclusive access to the owning context.
type Bucket struct {
	mu sync.Mutex

	id   int
	size int

	frames []RawFrame
	regs   []Registration

	// dirty marks that frames changed since tex was built.
	dirty bool
	tex   Texture
}

// BucketStats reports the result of pruning one bucket.
type BucketStats struct {
	Bucket    int
	Frames    int
	Reclaimed int
	Survivors int
	Dropped   int
}

func newBucket(id, initialFrames int) *Bucket {
	return &Bucket{
		id:     id,
		size:   BucketSize(id),
		frames: make([]RawFrame, 0, initialFrames),
	}
}

// ID returns the bucket id.
func (b *Bucket) ID() int { return b.id }

// Size returns the frame edge of this bucket.
func (b *Bucket) Size() int { return b.size }

// StoreFrames appends frames and returns the id of the first one.
// All frames must match the bucket size. The bucket is marked dirty.
func (b *Bucket) StoreFrames(frames []RawFrame) (int, error) {
	for i := range frames {
		if err := frames[i].Validate(b.size); err != nil {
			return 0, fmt.Errorf("atlas: bucket %d frame %d: %w", b.id, i, err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	base := len(b.frames)
	b.frames = append(b.frames, frames...)
	if len(frames) > 0 {
		b.dirty = true
	}
	return base, nil
}

// StoreSprite registers a sprite so its state follows compaction.
func (b *Bucket) StoreSprite(reg Registration) {
	b.mu.Lock()
	b.regs = append(b.regs, reg)
	b.mu.Unlock()
}

// Len returns the number of stored frames.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Registrations returns the number of registered sprites, alive or not.
func (b *Bucket) Registrations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.regs)
}

// Dirty reports whether the texture is out of date.
func (b *Bucket) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// Texture returns the most recently built texture, or nil.
func (b *Bucket) Texture() Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tex
}

// Frame returns a copy of the frame header at id. The pixels are shared.
func (b *Bucket) Frame(id int) (RawFrame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id < 0 || id >= len(b.frames) {
		return RawFrame{}, false
	}
	return b.frames[id], true
}

// Update rebuilds the texture if the frame list changed.
func (b *Bucket) Update(backend Backend) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dirty {
		return nil
	}
	return b.rebuildLocked(backend)
}

// liveRange is a run of frames owned by surviving sprites.
type liveRange struct {
	start, n int
}

// move records that frames [from, from+n) now start at to.
type move struct {
	from, to, n int
}

// Prune drops dead sprites, compacts the frame list and retags survivors
// with epoch. If no frame was reclaimed the texture is left alone.
//
// A nil backend skips the rebuild; the bucket stays dirty until Update.
// Survivors are retagged even when the rebuild fails.
func (b *Bucket) Prune(backend Backend, epoch uint64) (BucketStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	alive := make([]Registration, 0, len(b.regs))
	var ranges []liveRange
	for _, r := range b.regs {
		if !r.Alive() {
			continue
		}
		alive = append(alive, r)
		if id := r.State.TextureID(); id != NoTexture && r.State.Frames() > 0 {
			ranges = append(ranges, liveRange{start: int(id), n: r.State.Frames()})
		}
	}
	dropped := len(b.regs) - len(alive)

	moves := compact(b.frames, mergeRanges(ranges))
	kept := 0
	if len(moves) > 0 {
		last := moves[len(moves)-1]
		kept = last.to + last.n
	}
	reclaimed := len(b.frames) - kept
	clear(b.frames[kept:])
	b.frames = b.frames[:kept]

	var err error
	if reclaimed > 0 {
		b.dirty = true
		if backend != nil {
			err = b.rebuildLocked(backend)
		}
	}

	for _, r := range alive {
		if id := r.State.TextureID(); id != NoTexture {
			r.State.textureID.Store(remap(moves, id))
		}
		r.State.epoch.Store(epoch)
	}

	b.regs = alive

	return BucketStats{
		Bucket:    b.id,
		Frames:    kept,
		Reclaimed: reclaimed,
		Survivors: len(alive),
		Dropped:   dropped,
	}, err
}

// Close releases the texture.
func (b *Bucket) Close(backend Backend) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tex != nil && backend != nil {
		backend.ReleaseArray(b.tex)
	}
	b.tex = nil
	b.dirty = len(b.frames) > 0
}

func (b *Bucket) rebuildLocked(backend Backend) error {
	if backend == nil {
		return ErrNilBackend
	}
	old := b.tex
	if len(b.frames) == 0 {
		b.tex = nil
	} else {
		tex, err := backend.RebuildArray(ArrayDesc{
			Label:  fmt.Sprintf("atlas_bucket_%d", b.id),
			Bucket: b.id,
			Size:   b.size,
			Layers: len(b.frames),
		}, b.frames)
		if err != nil {
			return fmt.Errorf("atlas: rebuild bucket %d: %w", b.id, err)
		}
		b.tex = tex
	}
	if old != nil {
		backend.ReleaseArray(old)
	}
	b.dirty = false

	slogger().Debug("atlas: bucket rebuilt",
		"bucket", b.id, "size", b.size, "layers", len(b.frames))
	return nil
}

// mergeRanges sorts ranges by start and merges overlapping or adjacent ones.
func mergeRanges(ranges []liveRange) []liveRange {
	if len(ranges) == 0 {
		return nil
	}
	slices.SortFunc(ranges, func(a, b liveRange) int { return a.start - b.start })

	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.start <= last.start+last.n {
			last.n = max(last.n, r.start+r.n-last.start)
			continue
		}
		out = append(out, r)
	}
	return out
}

// compact shifts each range left over the dead frames before it and returns
// where every range moved to. Ranges must be sorted and disjoint.
func compact(frames []RawFrame, ranges []liveRange) []move {
	moves := make([]move, 0, len(ranges))
	write := 0
	for _, r := range ranges {
		end := min(r.start+r.n, len(frames))
		if r.start >= end {
			continue
		}
		n := end - r.start
		if r.start != write {
			copy(frames[write:], frames[r.start:end])
		}
		moves = append(moves, move{from: r.start, to: write, n: n})
		write += n
	}
	return moves
}

// remap translates an old frame id through moves.
func remap(moves []move, id uint32) uint32 {
	old := int(id)
	i := sort.Search(len(moves), func(i int) bool { return moves[i].from > old }) - 1
	if i < 0 {
		return id
	}
	return uint32(moves[i].to + old - moves[i].from) //nolint:gosec // ids fit in uint32
}
