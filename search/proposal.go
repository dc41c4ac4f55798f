package search

import (
	"math"
	"math/rand/v2"
)

// ballPoint draws a point uniformly distributed inside the unit dim-ball:
// an isotropic direction from independent standard normals, scaled by
// u^(1/dim) so that radii follow the volume element rather than clustering
// at the center.
func ballPoint(rng *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	var norm float64
	for i := range v {
		v[i] = rng.NormFloat64()
		norm += v[i] * v[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// All-zero normal draw; the origin is a valid ball point.
		return v
	}

	radius := math.Pow(rng.Float64(), 1/float64(dim))
	for i := range v {
		v[i] = v[i] / norm * radius
	}

	return v
}

// propose generates a candidate point for a region: a ball-uniform jump from
// the chain head, scaled per dimension by the domain range, the base step,
// and the region's adaptive 2^stepScale factor. The candidate may land
// outside the bounds; the admission rule discards it there.
func (s *searcher[P]) propose(r *region[P]) []float64 {
	head := r.head()
	jump := ballPoint(s.rng, s.dim)
	scale := s.cfg.baseStep * math.Exp2(r.stepScale)

	y := make([]float64, s.dim)
	for i := range y {
		y[i] = head[i] + s.span[i]*scale*jump[i]
	}

	return y
}

// inBounds reports whether every coordinate of x lies inside the domain.
func (s *searcher[P]) inBounds(x []float64) bool {
	for i, v := range x {
		if v < s.bounds[i][0] || v > s.bounds[i][1] {
			return false
		}
	}

	return true
}
