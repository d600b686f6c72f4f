// Package atlas implements a size-bucketed texture atlas with live
// compaction.
//
// Frames are square RGBA8 pixel buffers. Every frame belongs to exactly one
// bucket, chosen by [BucketInfo] from the larger dimension of the source
// image, and all frames in a bucket share one padded size. A bucket is
// uploaded to the GPU as a single 2D texture array with one layer per frame,
// so a sprite is addressed by (bucket, layer) pairs.
//
// # Ownership
//
// Sprites register a [Registration] with their bucket: a pointer to the
// sprite's shared [SpriteState] plus a liveness probe. The atlas never keeps
// a sprite alive. When the probe reports false the sprite's frames are dead
// and the next prune reclaims them.
//
// # Compaction
//
// [Context.Prune] advances the atlas epoch and compacts every bucket:
// surviving frame ranges are shifted left over dead ones, preserving order,
// and each surviving sprite has its texture id and epoch overwritten in
// place with single atomic stores. Draw calls that already captured an old
// texture id are caught by epoch checks in the layer they are drawn into.
//
// Prune requires exclusive access to the context. It must not run while
// frames or sprites are being stored, or while a layer holding vertices from
// the previous epoch is being read.
//
// # Backends
//
// GPU resources are created through the [Backend] interface. The atlas
// only rebuilds a bucket's texture when its frame list changed.
package atlas
