package search

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemap/pspart/errs"
)

// halfPlaneModel splits the unit square at x = 0.5.
func halfPlaneModel(x []float64) string {
	if x[0] < 0.5 {
		return "A"
	}

	return "B"
}

var unitSquare = [][2]float64{{0, 1}, {0, 1}}

// TestRunHalfPlane verifies the end-to-end scenario: two seeds, one per
// half, must yield exactly two regions whose means sit near the half-plane
// centroids, without ever tripping the pattern budget.
func TestRunHalfPlane(t *testing.T) {
	res, err := Run(halfPlaneModel,
		[][]float64{{0.25, 0.5}, {0.75, 0.5}},
		unitSquare,
		WithMaxPatterns(2),
		WithCoarseCycle(60),
		WithFineCycle(150),
		WithRand(rand.New(rand.NewPCG(42, 1))),
	)
	require.NoError(t, err)
	require.Len(t, res.Regions, 2)

	centroids := map[string][2]float64{
		"A": {0.25, 0.5},
		"B": {0.75, 0.5},
	}
	for _, region := range res.Regions {
		want, ok := centroids[region.Pattern]
		require.True(t, ok, "unexpected pattern %q", region.Pattern)
		require.Positive(t, region.Samples)
		require.InDelta(t, want[0], region.Mean[0], 0.15)
		require.InDelta(t, want[1], region.Mean[1], 0.15)
	}
	require.Positive(t, res.Trials)
}

// TestRunChainConsistency checks the core region invariants on a model with
// three patterns: every chain point is in bounds and maps to its region's
// pattern, and no two regions share a pattern.
func TestRunChainConsistency(t *testing.T) {
	stripes := func(x []float64) int {
		switch {
		case x[0] < 1.0/3:
			return 0
		case x[0] < 2.0/3:
			return 1
		default:
			return 2
		}
	}

	res, err := Run(stripes,
		[][]float64{{0.1, 0.5}, {0.5, 0.5}, {0.9, 0.5}},
		unitSquare,
		WithMaxPatterns(3),
		WithCoarseCycle(40),
		WithFineCycle(60),
		WithMaxRegions(3),
		WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	require.NoError(t, err)
	require.Len(t, res.Regions, 3)

	seen := make(map[int]bool)
	for _, region := range res.Regions {
		require.False(t, seen[region.Pattern], "pattern %d appears in two regions", region.Pattern)
		seen[region.Pattern] = true

		require.NotEmpty(t, region.Chain)
		for _, point := range region.Chain {
			require.Len(t, point, 2)
			for d, v := range point {
				require.GreaterOrEqual(t, v, unitSquare[d][0])
				require.LessOrEqual(t, v, unitSquare[d][1])
			}
			require.Equal(t, region.Pattern, stripes(point))
		}
	}
}

// TestRunTooManyPatterns verifies the fatal budget failure: with a budget of
// one, the second distinct pattern aborts the run with no partial result.
func TestRunTooManyPatterns(t *testing.T) {
	res, err := Run(halfPlaneModel,
		[][]float64{{0.25, 0.5}, {0.75, 0.5}},
		unitSquare,
		WithMaxPatterns(1),
		WithRand(rand.New(rand.NewPCG(1, 1))),
	)
	require.ErrorIs(t, err, errs.ErrTooManyPatterns)
	require.Nil(t, res)
}

// TestRunValidation covers the fatal input conditions. The out-of-bounds
// case additionally asserts the oracle is never consulted: validation runs
// strictly before any model call.
func TestRunValidation(t *testing.T) {
	calls := 0
	counting := func(x []float64) string {
		calls++
		return halfPlaneModel(x)
	}

	tests := []struct {
		name    string
		starts  [][]float64
		bounds  [][2]float64
		opts    []Option
		wantErr error
	}{
		{
			name:    "dimension mismatch",
			starts:  [][]float64{{0.5}},
			bounds:  unitSquare,
			opts:    []Option{WithMaxPatterns(2)},
			wantErr: errs.ErrDimensionMismatch,
		},
		{
			name:    "inverted bounds",
			starts:  [][]float64{{0.5, 0.5}},
			bounds:  [][2]float64{{0, 1}, {1, 0}},
			opts:    []Option{WithMaxPatterns(2)},
			wantErr: errs.ErrInvalidBounds,
		},
		{
			name:    "no starting points",
			starts:  nil,
			bounds:  unitSquare,
			opts:    []Option{WithMaxPatterns(2)},
			wantErr: errs.ErrNoStartingPoints,
		},
		{
			name:    "starting point outside bounds",
			starts:  [][]float64{{1.5, 0.5}},
			bounds:  unitSquare,
			opts:    []Option{WithMaxPatterns(2)},
			wantErr: errs.ErrStartOutOfBounds,
		},
		{
			name:    "missing max patterns",
			starts:  [][]float64{{0.5, 0.5}},
			bounds:  unitSquare,
			wantErr: errs.ErrMaxPatternsRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			res, err := Run(counting, tt.starts, tt.bounds, tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, res)
			require.Zero(t, calls, "oracle must not be called on invalid input")
		})
	}
}

// TestRunOptionValidation verifies that invalid option values fail before
// the search starts.
func TestRunOptionValidation(t *testing.T) {
	for _, opt := range []Option{
		WithMaxRegions(0),
		WithBaseStep(-0.5),
		WithCoarseCycle(-1),
		WithFineCycle(0),
		WithVolumeSampleSize(0),
		WithMaxPatterns(-2),
		WithRand(nil),
		WithLogger(nil),
	} {
		res, err := Run(halfPlaneModel, [][]float64{{0.5, 0.5}}, unitSquare, opt)
		require.ErrorIs(t, err, errs.ErrInvalidOption)
		require.Nil(t, res)
	}
}

// TestRunReproducible verifies that the same seed yields the same run: same
// trial count, same chains, same estimates.
func TestRunReproducible(t *testing.T) {
	run := func() *Result[string] {
		res, err := Run(halfPlaneModel,
			[][]float64{{0.25, 0.5}, {0.75, 0.5}},
			unitSquare,
			WithMaxPatterns(2),
			WithCoarseCycle(30),
			WithFineCycle(40),
			WithMaxRegions(2),
			WithRand(rand.New(rand.NewPCG(99, 3))),
		)
		require.NoError(t, err)

		return res
	}

	first := run()
	second := run()

	require.Equal(t, first.Trials, second.Trials)
	require.Equal(t, first.Regions, second.Regions)
}

// TestRunDuplicateSeeds verifies that multiple starting points sharing a
// pattern open a single region.
func TestRunDuplicateSeeds(t *testing.T) {
	constant := func([]float64) int { return 1 }

	res, err := Run(constant,
		[][]float64{{0.2, 0.2}, {0.8, 0.8}},
		unitSquare,
		WithMaxPatterns(1),
		WithCoarseCycle(20),
		WithFineCycle(30),
		WithMaxRegions(1),
		WithRand(rand.New(rand.NewPCG(5, 5))),
	)
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	require.Equal(t, []float64{0.2, 0.2}, res.Regions[0].Chain[0])
}
