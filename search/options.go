package search

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/spacemap/pspart/errs"
)

// Option configures a search run. Options are applied in order and validated
// eagerly; the first invalid option aborts the run before any model call.
type Option func(*settings) error

// settings holds the resolved run configuration. Cycle lengths and the volume
// sample size default to dimension-dependent values that are only computable
// once the bounds are known, so zero means "use the default".
type settings struct {
	maxRegions     int
	baseStep       float64
	coarseCycle    int
	fineCycle      int
	volumeSamples  int
	maxPatterns    int
	accurateVolume bool
	rng            *rand.Rand
	logger         *slog.Logger
}

func defaultSettings() settings {
	return settings{
		maxRegions: 6,
		baseStep:   0.1,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// resolve fills dimension-dependent defaults and the fallback random source.
// The time-derived seed lives here, at the outermost call boundary, so tests
// and callers can inject a seeded source instead.
func (s *settings) resolve(dim int) {
	if s.coarseCycle == 0 {
		s.coarseCycle = scaledCycle(100, dim)
	}
	if s.fineCycle == 0 {
		s.fineCycle = scaledCycle(200, dim)
	}
	if s.volumeSamples == 0 {
		s.volumeSamples = scaledCycle(500, dim)
	}
	if s.rng == nil {
		now := time.Now()
		s.rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	}
}

// scaledCycle grows cycle lengths geometrically with dimensionality so that
// acceptance-rate estimates stay comparably stable as the space gets larger.
func scaledCycle(base float64, dim int) int {
	return int(math.Ceil(base * math.Pow(1.2, float64(dim))))
}

// WithMaxRegions sets the expected number of regions used by the stopping
// rule: the run continues until every region has collected at least
// maxRegions*fineCycle trials in the monitoring level. Default is 6.
func WithMaxRegions(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("%w: max regions must be positive, got %d", errs.ErrInvalidOption, n)
		}
		s.maxRegions = n

		return nil
	}
}

// WithBaseStep sets the base jump size as a fraction of each dimension's
// range, before per-region adaptive scaling. Default is 0.1.
func WithBaseStep(step float64) Option {
	return func(s *settings) error {
		if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
			return fmt.Errorf("%w: base step must be a positive finite value, got %v", errs.ErrInvalidOption, step)
		}
		s.baseStep = step

		return nil
	}
}

// WithCoarseCycle sets the trial count per coarse (level 0) adaptation cycle.
// Default is ceil(100 * 1.2^dim).
func WithCoarseCycle(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("%w: coarse cycle must be positive, got %d", errs.ErrInvalidOption, n)
		}
		s.coarseCycle = n

		return nil
	}
}

// WithFineCycle sets the trial count per fine (level 1) adaptation cycle.
// Default is ceil(200 * 1.2^dim).
func WithFineCycle(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("%w: fine cycle must be positive, got %d", errs.ErrInvalidOption, n)
		}
		s.fineCycle = n

		return nil
	}
}

// WithVolumeSampleSize sets the number of Monte-Carlo draws per region used
// by the hit-or-miss volume refinement. Default is ceil(500 * 1.2^dim).
func WithVolumeSampleSize(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("%w: volume sample size must be positive, got %d", errs.ErrInvalidOption, n)
		}
		s.volumeSamples = n

		return nil
	}
}

// WithMaxPatterns sets the pattern budget. The run fails with
// errs.ErrTooManyPatterns as soon as discovering one more distinct pattern
// would exceed the budget. This option is mandatory; there is no sane
// universal default for how irregular a model is allowed to be.
func WithMaxPatterns(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("%w: max patterns must be positive, got %d", errs.ErrInvalidOption, n)
		}
		s.maxPatterns = n

		return nil
	}
}

// WithAccurateVolume enables the hit-or-miss Monte-Carlo correction of each
// region's closed-form log-volume. This phase calls the model oracle from
// multiple goroutines, so the model must be safe for concurrent use when
// this option is enabled.
func WithAccurateVolume() Option {
	return func(s *settings) error {
		s.accurateVolume = true

		return nil
	}
}

// WithRand injects the random source used for proposals and volume draws.
// Supplying a seeded source makes the run reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) error {
		if rng == nil {
			return fmt.Errorf("%w: random source must not be nil", errs.ErrInvalidOption)
		}
		s.rng = rng

		return nil
	}
}

// WithLogger sets the diagnostics logger. Logging is purely observational and
// never affects the search. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return fmt.Errorf("%w: logger must not be nil", errs.ErrInvalidOption)
		}
		s.logger = logger

		return nil
	}
}
