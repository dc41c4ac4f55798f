package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a region label. Snapshot files index regions by
// this value so lookups don't depend on label length.
func ID(label string) uint64 {
	return xxhash.Sum64String(label)
}

// Sum computes the xxHash64 of raw bytes, used as the snapshot payload
// checksum.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
