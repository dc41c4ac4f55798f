// Package search implements adaptive partitioning of a bounded parameter
// space into maximal connected regions that share the same qualitative model
// output, following the MCMC parameter space partitioning scheme of Pitt,
// Kim, Navarro and Myung (2006).
//
// The caller supplies a model oracle mapping points to discrete, comparable
// pattern values, one or more starting points, and per-dimension bounds. The
// search grows one Markov chain per discovered pattern: each iteration picks
// the least mature region, proposes an isotropic jump from its chain head,
// and either extends the chain (same pattern), opens a new region (unseen
// pattern), or discards the proposal. A three-level controller adapts each
// region's jump scale toward a target acceptance-rate band before statistics
// collection begins.
//
// # Basic Usage
//
//	model := func(x []float64) string {
//	    if x[0] < 0.5 {
//	        return "A"
//	    }
//	    return "B"
//	}
//
//	res, err := search.Run(model,
//	    [][]float64{{0.25, 0.5}, {0.75, 0.5}},
//	    [][2]float64{{0, 1}, {0, 1}},
//	    search.WithMaxPatterns(2),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, region := range res.Regions {
//	    fmt.Println(region.Pattern, region.Mean, region.LogVolume)
//	}
//
// Runs are reproducible when a seeded source is injected via WithRand. The
// model oracle must be safe for concurrent calls only when accurate volume
// estimation is enabled; the sampling loop itself is strictly sequential.
package search
