// Package snapshot persists finished search runs in a compact binary format.
//
// A snapshot stores, per region: an xxHash64 identifier, the caller-supplied
// pattern label, the full chain of accepted points in columnar layout, the
// estimated mean and covariance, and the volume figures. The payload can be
// compressed with S2, LZ4 or Zstandard, selected by a flag byte in the
// header, and is protected by an xxHash64 checksum.
//
// Patterns are generic on the search side, so encoding takes a label
// function that renders each pattern as a string; decoding returns the
// stored labels rather than reconstructing pattern values.
//
//	data, err := snapshot.Encode(res, func(p string) string { return p },
//	    snapshot.WithCompression(snapshot.CompressionZstd))
//	if err != nil {
//	    return err
//	}
//
//	snap, err := snapshot.Decode(data)
//	if err != nil {
//	    return err
//	}
//	for _, region := range snap.Regions {
//	    fmt.Println(region.Label, region.Mean, region.LogVolume)
//	}
package snapshot
