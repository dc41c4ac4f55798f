package search

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// summarize converts a region's running sums into its immutable result
// entry. The estimators are the plug-in forms: mean = sum/n and
// cov = sumXX/n - mean*mean'.
func (s *searcher[P]) summarize(r *region[P]) Region[P] {
	out := Region[P]{
		Pattern: r.pattern,
		Chain:   r.chain,
	}

	if r.collected == 0 {
		// Degenerate region: termination was driven by trial counts, not
		// acceptances, so a region may finish without a single monitoring
		// point. Fall back to the chain head with zero spread.
		out.Mean = slices.Clone(r.head())
		out.Cov = mat.NewSymDense(s.dim, nil)
		out.LogVolume = math.Inf(-1)

		return out
	}

	n := float64(r.collected)
	mean := make([]float64, s.dim)
	for i := range mean {
		mean[i] = r.sumX[i] / n
	}

	cov := mat.NewSymDense(s.dim, nil)
	for i := range s.dim {
		for j := i; j < s.dim; j++ {
			cov.SetSym(i, j, r.sumXX[i*s.dim+j]/n-mean[i]*mean[j])
		}
	}

	out.Mean = mean
	out.Cov = cov
	out.Samples = r.collected
	out.LogVolume = ellipsoidLogVolume(cov, s.dim)

	return out
}

// unitBallLogVolume returns ln of the volume of the unit ball in dim
// dimensions, using the distinct closed forms for even and odd dim so both
// avoid the half-integer gamma evaluation.
func unitBallLogVolume(dim int) float64 {
	half := float64(dim) / 2
	if dim%2 == 0 {
		lg, _ := math.Lgamma(half + 1)
		return half*math.Log(math.Pi) - lg
	}

	k := math.Floor(half)
	lgK, _ := math.Lgamma(k + 1)
	lgD, _ := math.Lgamma(float64(dim) + 1)

	return float64(dim)*math.Ln2 + lgK - lgD + k*math.Log(math.Pi)
}

// ellipsoidLogVolume is the closed-form log-volume of the characteristic
// ellipsoid of a region: the unit-ball volume scaled by the square roots of
// the eigenvalues of (dim+2)*cov. A rank-deficient covariance yields -Inf.
func ellipsoidLogVolume(cov *mat.SymDense, dim int) float64 {
	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range eig.Values(nil) {
		sum += math.Log(v * float64(dim+2))
	}

	return unitBallLogVolume(dim) + 0.5*sum
}

// sqrtSPD returns the symmetric square root of a positive semi-definite
// matrix via its eigendecomposition, clamping tiny negative eigenvalues
// introduced by round-off.
func sqrtSPD(m *mat.SymDense, dim int) (*mat.Dense, error) {
	var eig mat.EigenSym
	if !eig.Factorize(m, true) {
		return nil, fmt.Errorf("eigendecomposition failed for %dx%d covariance", dim, dim)
	}

	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Scale each eigenvector column by sqrt(lambda), then multiply back.
	scaled := mat.NewDense(dim, dim, nil)
	for j := range dim {
		sv := math.Sqrt(math.Max(vals[j], 0))
		for i := range dim {
			scaled.Set(i, j, vecs.At(i, j)*sv)
		}
	}

	var root mat.Dense
	root.Mul(scaled, vecs.T())

	return &root, nil
}

// refineVolumes applies the hit-or-miss Monte-Carlo correction to each
// region's closed-form log-volume: draw ball-uniform points under the
// region's (dim+2)-scaled covariance ellipsoid, count how many actually map
// to the region's pattern, and shift the log-volume by log(hits/trials).
//
// Regions refine in parallel; each goroutine gets its own random stream
// split off the run's source before launch, so draws stay independent and
// the result does not depend on goroutine interleaving.
func (s *searcher[P]) refineVolumes(regions []Region[P]) error {
	var g errgroup.Group

	for i := range regions {
		reg := &regions[i]
		if reg.Samples == 0 {
			continue
		}

		rng := rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
		g.Go(func() error {
			scaled := mat.NewSymDense(s.dim, nil)
			for i := range s.dim {
				for j := i; j < s.dim; j++ {
					scaled.SetSym(i, j, float64(s.dim+2)*reg.Cov.At(i, j))
				}
			}
			root, err := sqrtSPD(scaled, s.dim)
			if err != nil {
				return err
			}

			hits := 0
			y := make([]float64, s.dim)
			for range s.cfg.volumeSamples {
				u := ballPoint(rng, s.dim)
				for i := range y {
					y[i] = reg.Mean[i]
					for j := range u {
						y[i] += root.At(i, j) * u[j]
					}
				}
				if s.inBounds(y) && s.model(y) == reg.Pattern {
					hits++
				}
			}

			reg.VolumeTrials = s.cfg.volumeSamples
			reg.VolumeHits = hits
			// hits == 0 drives the estimate to -Inf; VolumeHits lets the
			// caller tell this anomaly from a genuinely tiny region.
			reg.LogVolume += math.Log(float64(hits)) - math.Log(float64(s.cfg.volumeSamples))

			s.logger.Debug("region volume refined",
				slog.Any("pattern", reg.Pattern), "hits", hits, "trials", s.cfg.volumeSamples, "logVolume", reg.LogVolume)

			return nil
		})
	}

	return g.Wait()
}
