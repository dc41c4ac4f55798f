package search

import (
	"slices"

	"github.com/spacemap/pspart/errs"
)

// Tuning maturity levels. A region only ever moves forward through them.
const (
	levelCoarse  = 0 // wide acceptance band, aggressive scale changes
	levelFine    = 1 // narrow band, fractional scale changes
	levelMonitor = 2 // scale frozen, statistics collection
)

// region is the mutable per-pattern search state: the chain of accepted
// points, the running moment sums behind the final mean/covariance, and the
// adaptation counters.
type region[P comparable] struct {
	pattern P
	chain   [][]float64

	// First and second moment sums over points accepted at levelMonitor.
	// sumXX is a dim*dim row-major matrix.
	sumXX     []float64
	sumX      []float64
	collected int

	trials    int     // trials attributed to this region since the last level reset
	accepts   int     // accepted moves in the current tuning cycle
	stepScale float64 // log2-domain jump scale exponent
	level     int
}

func newRegion[P comparable](seed []float64, pattern P, dim int) *region[P] {
	return &region[P]{
		pattern: pattern,
		chain:   [][]float64{slices.Clone(seed)},
		sumX:    make([]float64, dim),
		sumXX:   make([]float64, dim*dim),
	}
}

// head returns the current chain head, the origin of the next proposal.
// The chain is seeded at creation so head is always defined.
func (r *region[P]) head() []float64 {
	return r.chain[len(r.chain)-1]
}

// accept appends a point to the chain and, once the region is in the
// monitoring level, folds it into the moment sums.
func (r *region[P]) accept(x []float64, dim int) {
	r.chain = append(r.chain, x)
	r.accepts++

	if r.level != levelMonitor {
		return
	}

	for i := range dim {
		r.sumX[i] += x[i]
		for j := range dim {
			r.sumXX[i*dim+j] += x[i] * x[j]
		}
	}
	r.collected++
}

// promote advances the region to the next tuning level and restarts its
// trial and acceptance counters.
func (r *region[P]) promote(level int) {
	r.level = level
	r.trials = 0
	r.accepts = 0
}

// store is the region collection plus the pattern registry. Regions and
// patterns are only ever added, never removed or merged, so a pattern maps
// to exactly one region for the lifetime of a run.
type store[P comparable] struct {
	regions []*region[P]
	seen    map[P]struct{}
	dim     int
	budget  int // maximum number of distinct patterns
}

func newStore[P comparable](dim, budget int) *store[P] {
	return &store[P]{
		seen:   make(map[P]struct{}),
		dim:    dim,
		budget: budget,
	}
}

// tryCreate registers a pattern and opens a region seeded at x if the
// pattern is new. It reports whether a region was created. Exceeding the
// pattern budget is fatal for the whole run.
func (st *store[P]) tryCreate(x []float64, pattern P) (bool, error) {
	if _, ok := st.seen[pattern]; ok {
		return false, nil
	}
	if len(st.seen) >= st.budget {
		return false, errs.ErrTooManyPatterns
	}

	st.seen[pattern] = struct{}{}
	st.regions = append(st.regions, newRegion(x, pattern, st.dim))

	return true, nil
}

// minLevel returns the lowest tuning level across all regions.
func (st *store[P]) minLevel() int {
	min := levelMonitor
	for _, r := range st.regions {
		if r.level < min {
			min = r.level
		}
	}

	return min
}

// minTrials returns the smallest per-region trial count.
func (st *store[P]) minTrials() int {
	min := st.regions[0].trials
	for _, r := range st.regions[1:] {
		if r.trials < min {
			min = r.trials
		}
	}

	return min
}

// pick selects the region to advance next: the least mature level first,
// ties broken by the smallest trial count. Under-sampled regions at the
// lowest level are always served before any region collects statistics.
func (st *store[P]) pick() int {
	level := st.minLevel()
	best := -1
	for i, r := range st.regions {
		if r.level != level {
			continue
		}
		if best < 0 || r.trials < st.regions[best].trials {
			best = i
		}
	}

	return best
}
