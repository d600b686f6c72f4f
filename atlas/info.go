package atlas

import "math/bits"

const (
	// MinBucketSize is the frame edge of bucket 0.
	MinBucketSize = 8

	// NumBuckets is the number of size classes. The largest holds
	// MaxBucketSize frames.
	NumBuckets = 11

	// MaxBucketSize is the frame edge of the largest bucket.
	MaxBucketSize = MinBucketSize << (NumBuckets - 1)

	minBucketShift = 3
)

// BucketInfo returns the bucket id and padded frame edge for an image of the
// given dimensions.
//
// The bucket is max(0, ceil(log2(max(w, h))) - 3) and the padded size is
// 8 << bucket, so padded >= max(w, h) and every frame in a bucket has the
// same edge. Images up to 8x8 land in bucket 0. The returned id may be
// NumBuckets or larger for images above MaxBucketSize; callers check it
// against the context.
func BucketInfo(width, height int) (bucket, padded int) {
	m := max(width, height, 1)
	e := bits.Len(uint(m - 1)) //nolint:gosec // m >= 1
	bucket = max(0, e-minBucketShift)
	return bucket, MinBucketSize << bucket
}

// BucketSize returns the frame edge of the given bucket.
func BucketSize(bucket int) int {
	return MinBucketSize << bucket
}
