package search

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// tunerFixture returns a searcher with fixed cycle lengths, suitable for
// driving the tuning state machine directly.
func tunerFixture() *searcher[string] {
	return &searcher[string]{
		dim:    1,
		cfg:    settings{coarseCycle: 10, fineCycle: 20},
		logger: slog.New(slog.DiscardHandler),
	}
}

// regionAt builds a region sitting exactly on a cycle boundary with the
// given acceptance count and step scale.
func regionAt(level, trials, accepts int, stepScale float64) *region[string] {
	r := newRegion([]float64{0}, "A", 1)
	r.level = level
	r.trials = trials
	r.accepts = accepts
	r.stepScale = stepScale

	return r
}

func TestCoarseTuning(t *testing.T) {
	s := tunerFixture()

	tests := []struct {
		name        string
		accepts     int
		stepScale   float64
		wantScale   float64
		wantLevel   int
		wantTrials  int
		wantAccepts int
	}{
		// rate 0.1 < 0.12, non-positive scale: shrink a full unit, stay coarse
		{"cold shrink", 1, 0, -1, levelCoarse, 10, 0},
		// rate 0.1 < 0.12, positive scale: half-unit shrink and promote
		{"cold promote", 1, 2, 1.5, levelFine, 0, 0},
		// rate 0.2 inside [0.12, 0.36): promote with no scale change
		{"on target", 2, 0.5, 0.5, levelFine, 0, 0},
		// rate 0.5 >= 0.36, non-negative scale: grow a full unit, stay coarse
		{"hot grow", 5, 0, 1, levelCoarse, 10, 0},
		// rate 0.5 >= 0.36, negative scale: half-unit grow and promote
		{"hot promote", 5, -2, -1.5, levelFine, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := regionAt(levelCoarse, 10, tt.accepts, tt.stepScale)
			s.tune(0, r)

			require.InDelta(t, tt.wantScale, r.stepScale, 1e-12)
			require.Equal(t, tt.wantLevel, r.level)
			require.Equal(t, tt.wantTrials, r.trials)
			require.Equal(t, tt.wantAccepts, r.accepts)
		})
	}
}

func TestCoarseTuningOffCycleBoundary(t *testing.T) {
	s := tunerFixture()
	r := regionAt(levelCoarse, 7, 3, 0)
	s.tune(0, r)

	// Nothing happens between cycle boundaries.
	require.Equal(t, levelCoarse, r.level)
	require.Equal(t, 3, r.accepts)
	require.Zero(t, r.stepScale)
}

func TestFineTuning(t *testing.T) {
	s := tunerFixture()

	tests := []struct {
		name      string
		trials    int // multiple of fineCycle; determines the cycle number
		accepts   int
		wantScale float64
		wantLevel int
	}{
		// rate 0.10 < 0.15 at cycle 1: correct by 0.25, keep tuning
		{"far cold keeps tuning", 20, 2, -0.25, levelFine},
		// rate 0.10 at cycle 3: damping ceil(3/2)=2 halves the correction
		{"far cold damped", 60, 2, -0.125, levelFine},
		// rate 0.10 at the cycle limit: correct and promote regardless
		{"far cold promoted at limit", 80, 2, -0.125, levelMonitor},
		// rate 0.16 in [0.15, 0.19): eighth-unit shrink, promote
		{"near cold", 20, 3, -0.125, levelMonitor},
		// rate 0.20 in [0.19, 0.24): promote untouched
		{"on target", 20, 4, 0, levelMonitor},
		// rate 0.25 in [0.24, 0.30): eighth-unit grow, promote
		{"near hot", 20, 5, 0.125, levelMonitor},
		// rate 0.40 >= 0.30 at cycle 1: correct by 0.25, keep tuning
		{"far hot keeps tuning", 20, 8, 0.25, levelFine},
		// rate 0.40 at the cycle limit: correct and promote
		{"far hot promoted at limit", 80, 8, 0.125, levelMonitor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := regionAt(levelFine, tt.trials, tt.accepts, 0)
			s.tune(0, r)

			require.InDelta(t, tt.wantScale, r.stepScale, 1e-12)
			require.Equal(t, tt.wantLevel, r.level)
			if tt.wantLevel == levelMonitor {
				require.Zero(t, r.trials)
				require.Zero(t, r.accepts)
			}
		})
	}
}

// TestMonitorFrozen verifies that the monitoring level never touches the
// step scale or the level, no matter where the acceptance rate sits.
func TestMonitorFrozen(t *testing.T) {
	s := tunerFixture()
	r := regionAt(levelMonitor, 20, 19, 0.75)
	s.tune(0, r)

	require.Equal(t, levelMonitor, r.level)
	require.InDelta(t, 0.75, r.stepScale, 1e-12)
	require.Equal(t, 19, r.accepts)
	require.Equal(t, 20, r.trials)
}

// TestAcceptAccumulatesOnlyWhileMonitoring verifies the moment sums stay
// zero through tuning and start accumulating at the monitoring level.
func TestAcceptAccumulatesOnlyWhileMonitoring(t *testing.T) {
	r := newRegion([]float64{0, 0}, "A", 2)

	r.accept([]float64{1, 2}, 2)
	require.Zero(t, r.collected)
	require.Equal(t, []float64{0, 0}, r.sumX)

	r.level = levelMonitor
	r.accept([]float64{1, 2}, 2)
	r.accept([]float64{3, 4}, 2)

	require.Equal(t, 2, r.collected)
	require.Equal(t, []float64{4, 6}, r.sumX)
	require.Equal(t, []float64{1*1 + 3*3, 1*2 + 3*4, 2*1 + 4*3, 2*2 + 4*4}, r.sumXX)
	require.Len(t, r.chain, 4) // seed + three accepts
}

// TestAccumulationOrderInvariant verifies the running sums do not depend on
// chain insertion order.
func TestAccumulationOrderInvariant(t *testing.T) {
	points := [][]float64{{0.1, 0.9}, {0.4, 0.2}, {0.7, 0.5}}

	forward := newRegion([]float64{0, 0}, "A", 2)
	forward.level = levelMonitor
	for _, p := range points {
		forward.accept(p, 2)
	}

	backward := newRegion([]float64{0, 0}, "A", 2)
	backward.level = levelMonitor
	for i := len(points) - 1; i >= 0; i-- {
		backward.accept(points[i], 2)
	}

	require.InDeltaSlice(t, forward.sumX, backward.sumX, 1e-12)
	require.InDeltaSlice(t, forward.sumXX, backward.sumXX, 1e-12)
}
