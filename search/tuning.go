package search

// Acceptance-rate bands for the step-scale controller. The coarse level aims
// anywhere inside a wide band; the fine level narrows onto [0.19, 0.24) with
// fractional corrections before the scale is frozen.
const (
	coarseLow  = 0.12
	coarseHigh = 0.36

	fineFarLow  = 0.15
	fineLow     = 0.19
	fineHigh    = 0.24
	fineFarHigh = 0.30

	// fineCycleLimit caps how many fine cycles a region may spend chasing the
	// band before it is promoted regardless.
	fineCycleLimit = 4
)

// tune runs the per-region adaptation step after every trial attributed to
// the region. It only acts on cycle boundaries, keyed on the region's trial
// counter modulo the level's cycle length.
func (s *searcher[P]) tune(idx int, r *region[P]) {
	switch r.level {
	case levelCoarse:
		s.tuneCoarse(idx, r)
	case levelFine:
		s.tuneFine(idx, r)
	case levelMonitor:
		s.monitor(idx, r)
	}
}

// tuneCoarse adjusts the step scale in whole log2 units until the acceptance
// rate lands inside the wide band. A region whose scale crosses zero while
// correcting gets a final half-unit nudge and moves on to fine tuning.
func (s *searcher[P]) tuneCoarse(idx int, r *region[P]) {
	if r.trials == 0 || r.trials%s.cfg.coarseCycle != 0 {
		return
	}

	cycle := r.trials / s.cfg.coarseCycle
	rate := float64(r.accepts) / float64(s.cfg.coarseCycle)
	r.accepts = 0

	s.logger.Debug("coarse adaptation cycle",
		"region", idx, "cycle", cycle, "acceptRate", rate, "stepScale", r.stepScale)

	switch {
	case rate < coarseLow:
		if r.stepScale > 0 {
			r.stepScale -= 0.5
			r.promote(levelFine)
		} else {
			r.stepScale--
		}
	case rate < coarseHigh:
		r.promote(levelFine)
	default:
		if r.stepScale < 0 {
			r.stepScale += 0.5
			r.promote(levelFine)
		} else {
			r.stepScale++
		}
	}
}

// tuneFine makes fractional corrections toward the narrow band. Rates inside
// or adjacent to the band promote immediately; far-off rates keep correcting
// with a damping factor that halves over cycle pairs, promoting once the
// cycle limit is reached.
func (s *searcher[P]) tuneFine(idx int, r *region[P]) {
	if r.trials == 0 || r.trials%s.cfg.fineCycle != 0 {
		return
	}

	cycle := r.trials / s.cfg.fineCycle
	rate := float64(r.accepts) / float64(s.cfg.fineCycle)
	r.accepts = 0

	s.logger.Debug("fine adaptation cycle",
		"region", idx, "cycle", cycle, "acceptRate", rate, "stepScale", r.stepScale)

	damping := float64((cycle + 1) / 2) // ceil(cycle/2)

	switch {
	case rate < fineFarLow:
		r.stepScale -= 0.25 / damping
		if cycle == fineCycleLimit {
			r.promote(levelMonitor)
		}
	case rate < fineLow:
		r.stepScale -= 0.125
		r.promote(levelMonitor)
	case rate < fineHigh:
		r.promote(levelMonitor)
	case rate < fineFarHigh:
		r.stepScale += 0.125
		r.promote(levelMonitor)
	default:
		r.stepScale += 0.25 / damping
		if cycle == fineCycleLimit {
			r.promote(levelMonitor)
		}
	}
}

// monitor logs the cumulative acceptance rate during statistics collection.
// The scale is frozen; nothing here mutates the region.
func (s *searcher[P]) monitor(idx int, r *region[P]) {
	switch {
	case r.trials == 1:
		s.logger.Debug("adaptation finished", "region", idx, "stepScale", r.stepScale)
	case r.trials%s.cfg.fineCycle == 0:
		s.logger.Debug("monitoring",
			"region", idx,
			"cycle", r.trials/s.cfg.fineCycle,
			"cumulativeAcceptRate", float64(r.accepts)/float64(r.trials))
	}
}
