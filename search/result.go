package search

import (
	"time"

	"gonum.org/v1/gonum/mat"
)

// Model is the external oracle mapping a point in parameter space to a
// discrete pattern value. The search treats it as a black box and may call
// it arbitrarily often; patterns are compared only by equality.
type Model[P comparable] func(point []float64) P

// Region is the immutable per-region summary in a Result.
type Region[P comparable] struct {
	// Pattern is the model output defining admission to this region.
	Pattern P

	// Chain is the full trajectory of accepted points, in insertion order,
	// starting at the seed. Every point lies within the run's bounds and
	// maps to Pattern under the model.
	Chain [][]float64

	// Mean and Cov are the plug-in estimates from the points collected in
	// the monitoring level. When no monitoring point was accepted (Samples
	// is zero), Mean falls back to the chain head and Cov is all zeros.
	Mean []float64
	Cov  *mat.SymDense

	// Samples is the number of accepted monitoring-level points behind Mean
	// and Cov.
	Samples int

	// LogVolume is the natural log of the estimated region volume: the
	// closed-form volume of the (dim+2)-scaled covariance ellipsoid, plus
	// the hit-or-miss correction when accurate volume estimation ran. Zero
	// hits during refinement drive it to -Inf; check VolumeHits to tell a
	// refinement miss from a genuinely degenerate region.
	LogVolume float64

	// VolumeTrials and VolumeHits describe the hit-or-miss refinement.
	// VolumeTrials is zero when refinement was disabled or skipped.
	VolumeTrials int
	VolumeHits   int
}

// Result is the outcome of a completed run.
type Result[P comparable] struct {
	// Regions holds one entry per discovered pattern, in discovery order.
	Regions []Region[P]

	// Trials is the total number of proposals generated, including
	// out-of-bounds and discarded ones.
	Trials int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
