package search

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/spacemap/pspart/errs"
)

// searcher is the per-run state: configuration, domain geometry, the region
// store and the trial counter. It is constructed fresh inside Run, so
// concurrent independent runs never share state.
type searcher[P comparable] struct {
	model  Model[P]
	bounds [][2]float64
	span   []float64
	dim    int
	cfg    settings
	rng    *rand.Rand
	logger *slog.Logger
	st     *store[P]

	trials  int
	started time.Time
}

// Run partitions the bounded parameter space into regions of constant model
// pattern and estimates each region's mean, covariance and volume.
//
// Parameters:
//   - model: Oracle mapping a point to its pattern. Must be pure; called
//     once per admitted trial and during volume refinement.
//   - starts: One or more in-bounds starting points seeding region
//     discovery.
//   - bounds: Per-dimension [min, max] domain limits, min <= max.
//   - opts: Run options. WithMaxPatterns is mandatory.
//
// Returns:
//   - *Result[P]: One summary per discovered region.
//   - error: A sentinel from the errs package on invalid input, or
//     errs.ErrTooManyPatterns when the model produces more distinct patterns
//     than the configured budget. Failed runs yield no partial result.
//
// Validation happens before any model call: a run that fails on its inputs
// has evaluated the oracle zero times.
func Run[P comparable](model Model[P], starts [][]float64, bounds [][2]float64, opts ...Option) (*Result[P], error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.maxPatterns == 0 {
		return nil, errs.ErrMaxPatternsRequired
	}

	dim := len(bounds)
	if dim == 0 {
		return nil, fmt.Errorf("%w: no dimensions", errs.ErrInvalidBounds)
	}
	span := make([]float64, dim)
	for i, b := range bounds {
		if b[0] > b[1] {
			return nil, fmt.Errorf("%w: dimension %d has min %v > max %v", errs.ErrInvalidBounds, i, b[0], b[1])
		}
		span[i] = b[1] - b[0]
	}
	if len(starts) == 0 {
		return nil, errs.ErrNoStartingPoints
	}
	for i, x := range starts {
		if len(x) != dim {
			return nil, fmt.Errorf("%w: starting point %d has %d coordinates, bounds define %d",
				errs.ErrDimensionMismatch, i, len(x), dim)
		}
		for j, v := range x {
			if v < bounds[j][0] || v > bounds[j][1] {
				return nil, fmt.Errorf("%w: starting point %d, dimension %d", errs.ErrStartOutOfBounds, i, j)
			}
		}
	}

	cfg.resolve(dim)

	s := &searcher[P]{
		model:   model,
		bounds:  bounds,
		span:    span,
		dim:     dim,
		cfg:     cfg,
		rng:     cfg.rng,
		logger:  cfg.logger,
		st:      newStore[P](dim, cfg.maxPatterns),
		started: time.Now(),
	}

	if err := s.seed(starts); err != nil {
		return nil, err
	}
	if err := s.sample(); err != nil {
		return nil, err
	}

	return s.finish()
}

// seed evaluates the model at every starting point and opens one region per
// distinct pattern. Duplicate-pattern starting points are ignored.
func (s *searcher[P]) seed(starts [][]float64) error {
	s.logger.Info("search starting", "dimensions", s.dim, "startingPoints", len(starts))

	for _, x := range starts {
		pattern := s.model(x)
		created, err := s.st.tryCreate(x, pattern)
		if err != nil {
			return err
		}
		if created {
			s.logger.Info("new pattern found at starting point",
				slog.Any("pattern", pattern), "trials", s.trials, "elapsed", time.Since(s.started))
		}
	}

	return nil
}

// sample is the main adaptive loop. Each iteration advances exactly one
// region: propose, admit or discard, then tune. The loop runs until every
// region has reached the monitoring level and collected enough trials for a
// stable second-moment estimate.
func (s *searcher[P]) sample() error {
	threshold := s.cfg.maxRegions * s.cfg.fineCycle

	for s.st.minLevel() < levelMonitor || s.st.minTrials() <= threshold {
		idx := s.st.pick()
		r := s.st.regions[idx]
		r.trials++
		s.trials++

		y := s.propose(r)
		if s.inBounds(y) {
			if err := s.admit(idx, r, y); err != nil {
				return err
			}
		}

		s.tune(idx, r)
	}

	return nil
}

// admit applies the admission rule to an in-bounds candidate: extend the
// scheduled region on a pattern match, open a new region on an unseen
// pattern, discard a point that belongs to some other known region.
func (s *searcher[P]) admit(idx int, r *region[P], y []float64) error {
	pattern := s.model(y)
	if pattern == r.pattern {
		r.accept(y, s.dim)
		return nil
	}

	created, err := s.st.tryCreate(y, pattern)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("new pattern found",
			slog.Any("pattern", pattern), "fromRegion", idx, "trials", s.trials, "elapsed", time.Since(s.started))
	}

	return nil
}

// finish turns the final region store into the run result: mean/covariance
// summaries, closed-form log-volumes, and the optional Monte-Carlo
// refinement.
func (s *searcher[P]) finish() (*Result[P], error) {
	res := &Result[P]{
		Regions: make([]Region[P], 0, len(s.st.regions)),
		Trials:  s.trials,
	}
	for _, r := range s.st.regions {
		res.Regions = append(res.Regions, s.summarize(r))
	}

	if s.cfg.accurateVolume {
		s.logger.Info("volume refinement starting", "regions", len(res.Regions), "samplesPerRegion", s.cfg.volumeSamples)
		if err := s.refineVolumes(res.Regions); err != nil {
			return nil, err
		}
	}

	res.Elapsed = time.Since(s.started)
	s.logger.Info("search finished",
		"regions", len(res.Regions), "trials", s.trials, "elapsed", res.Elapsed)

	return res, nil
}
