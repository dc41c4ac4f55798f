// Package pspart partitions a bounded multi-dimensional parameter space into
// maximal connected regions over which an external model produces the same
// qualitative output, and estimates each region's mean, covariance and
// volume.
//
// The heavy lifting lives in the search package; this package provides the
// convenient top-level entry point for the common case. The snapshot package
// persists finished runs in a compact binary format for later analysis.
//
// # Basic Usage
//
//	model := func(x []float64) string {
//	    if x[0] < 0.5 {
//	        return "left"
//	    }
//	    return "right"
//	}
//
//	res, err := pspart.Run(model,
//	    [][]float64{{0.25, 0.5}, {0.75, 0.5}},
//	    [][2]float64{{0, 1}, {0, 1}},
//	    search.WithMaxPatterns(2),
//	    search.WithAccurateVolume(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, region := range res.Regions {
//	    fmt.Printf("%v: mean=%v logVol=%.3f\n", region.Pattern, region.Mean, region.LogVolume)
//	}
//
// For reproducible runs, inject a seeded source with search.WithRand. For
// fine-grained control over cycle lengths and volume sampling, use the
// search package options directly.
package pspart

import "github.com/spacemap/pspart/search"

// Run partitions the parameter space defined by bounds, seeding region
// discovery from the supplied starting points. It is a thin wrapper over
// [search.Run]; see that function for the full contract.
func Run[P comparable](model search.Model[P], starts [][]float64, bounds [][2]float64, opts ...search.Option) (*search.Result[P], error) {
	return search.Run(model, starts, bounds, opts...)
}
