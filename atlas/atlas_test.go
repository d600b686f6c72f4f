package atlas

import (
	"errors"
	"sync"
	"sync/atomic"
)

// fakeTexture records what a rebuild was given.
type fakeTexture struct {
	size   int
	layers int
	// first holds Pix[0] of each layer at rebuild time.
	first []byte
}

func (t *fakeTexture) Width() int  { return t.size }
func (t *fakeTexture) Height() int { return t.size }
func (t *fakeTexture) Layers() int { return t.layers }

// fakeBackend counts rebuilds and releases.
type fakeBackend struct {
	mu       sync.Mutex
	rebuilds int
	released []Texture
	fail     error
}

var errFakeRebuild = errors.New("fake: rebuild failed")

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) RebuildArray(desc ArrayDesc, frames []RawFrame) (Texture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.rebuilds++
	tex := &fakeTexture{size: desc.Size, layers: desc.Layers}
	for _, fr := range frames {
		tex.first = append(tex.first, fr.Pix[0])
	}
	return tex, nil
}

func (f *fakeBackend) ReleaseArray(tex Texture) {
	f.mu.Lock()
	f.released = append(f.released, tex)
	f.mu.Unlock()
}

func (f *fakeBackend) counts() (rebuilds, released int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebuilds, len(f.released)
}

// markedFrames returns n frames of the given edge whose first byte is
// marker, marker+1, ...
func markedFrames(size, n int, marker byte) []RawFrame {
	frames := make([]RawFrame, n)
	for i := range frames {
		frames[i] = NewRawFrame(size)
		frames[i].Pix[0] = marker + byte(i) //nolint:gosec // test data
	}
	return frames
}

// testSprite stores n marked frames in bucket and registers a sprite for them.
type testSprite struct {
	state *SpriteState
	alive atomic.Bool
}

func storeTestSprite(c *Context, bucket, n int, marker byte) (*testSprite, error) {
	base, err := c.StoreFrames(bucket, markedFrames(BucketSize(bucket), n, marker))
	if err != nil {
		return nil, err
	}
	s := &testSprite{state: NewSpriteState(uint32(base), n, c.Epoch())} //nolint:gosec // small ids
	s.alive.Store(true)
	if err := c.StoreSprite(bucket, Registration{State: s.state, Alive: s.alive.Load}); err != nil {
		return nil, err
	}
	return s, nil
}
