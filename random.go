package simcore

import (
	"math"
	"math/rand"

	rv "github.com/kentwait/randomvariate"
)

// Random is the single seeded stochastic stream a simulation routes every
// draw through, per spec section 5: reproducibility requires one stream
// per replicate, never reseeded mid-run. Grounded on the teacher's use of
// rv.Poisson/rv.Binomial/rv.Multinomial (spreader.go, transmission_model.go,
// intrahost_process.go); gamma and uniform draws are added here because
// the upstream library does not expose them directly off a seeded source.
type Random struct {
	src *rand.Rand
}

// NewRandom creates a Random stream seeded with seed. Parallel replicates
// must use distinct seeds; this type never reseeds itself.
//
// rv.Poisson/rv.Binomial/rv.Multinomial draw from math/rand's global default
// source rather than from an explicit source parameter (the teacher's own
// tests seed the same way before calling them, e.g.
// intrahost_process_test.go's rand.Seed(0) before rv.Poisson), so the
// package-level source is seeded here too; otherwise those three draws
// would ignore seed entirely and break run-to-run reproducibility.
func NewRandom(seed int64) *Random {
	rand.Seed(seed)
	return &Random{src: rand.New(rand.NewSource(seed))}
}

// Uniform draws from U(0,1).
func (r *Random) Uniform() float64 {
	return r.src.Float64()
}

// Flat draws from U(lo, hi).
func (r *Random) Flat(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.src.Float64()*(hi-lo)
}

// Poisson draws a Poisson(lambda) count. lambda <= 0 always returns 0,
// matching the empty-location edge case in spec section 8 (no division
// by zero, no draws for an empty population).
func (r *Random) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return rv.Poisson(lambda)
}

// Binomial draws from Binomial(n, p).
func (r *Random) Binomial(n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	return int(rv.Binomial(n, p))
}

// Multinomial draws n items distributed across categorical probabilities
// probs (need not be pre-normalized to sum to 1; callers in this module
// always pass normalized weights).
func (r *Random) Multinomial(n int, probs []float64) []int {
	if n <= 0 || len(probs) == 0 {
		return make([]int, len(probs))
	}
	return rv.Multinomial(n, probs)
}

// Categorical draws a single index from a categorical distribution over
// weights (not necessarily normalized). Used by Strategy selection (MFT)
// and by weighted-recipient biting draws.
func (r *Random) Categorical(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	u := r.src.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if u < cum {
			return i
		}
	}
	return len(weights) - 1
}

// Gamma draws from a Gamma(shape, scale) distribution using Marsaglia and
// Tsang's method. Used by within-host parasite density update functions
// that model clearance/growth noise.
func (r *Random) Gamma(shape, scale float64) float64 {
	if shape <= 0 {
		return 0
	}
	if shape < 1 {
		u := r.src.Float64()
		return r.Gamma(shape+1, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = r.src.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := r.src.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Perm returns a random permutation of [0, n).
func (r *Random) Perm(n int) []int {
	return r.src.Perm(n)
}

// Intn draws a uniform integer in [0, n).
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.src.Intn(n)
}
