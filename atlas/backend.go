package atlas

import "github.com/gogpu/gpucontext"

// Texture is a GPU texture array built from one bucket.
type Texture interface {
	gpucontext.Texture

	// Layers returns the number of array layers.
	Layers() int
}

// ArrayDesc describes a texture array to build.
type ArrayDesc struct {
	Label  string
	Bucket int
	Size   int
	Layers int
}

// Backend creates and destroys bucket textures.
//
// RebuildArray is called with the full frame list of a bucket whenever that
// list changed. It must not retain frames after returning. ReleaseArray is
// called for the texture a rebuild replaced.
type Backend interface {
	Name() string
	RebuildArray(desc ArrayDesc, frames []RawFrame) (Texture, error)
	ReleaseArray(tex Texture)
}
