package simcore

import "testing"

func TestRandomPoissonZeroLambda(t *testing.T) {
	r := NewRandom(1)
	if got := r.Poisson(0); got != 0 {
		t.Fatalf("Poisson(0) = %d, want 0", got)
	}
	if got := r.Poisson(-5); got != 0 {
		t.Fatalf("Poisson(-5) = %d, want 0", got)
	}
}

func TestRandomFlatBounds(t *testing.T) {
	r := NewRandom(42)
	for i := 0; i < 1000; i++ {
		v := r.Flat(2, 5)
		if v < 2 || v >= 5 {
			t.Fatalf("Flat(2,5) returned %f, out of bounds", v)
		}
	}
	if got := r.Flat(5, 5); got != 5 {
		t.Fatalf("Flat(5,5) = %f, want 5", got)
	}
}

func TestRandomCategoricalDegenerateWeights(t *testing.T) {
	r := NewRandom(7)
	if got := r.Categorical([]float64{0, 0, 0}); got != 0 {
		t.Fatalf("Categorical of all-zero weights = %d, want 0", got)
	}
	// A single nonzero weight should always win.
	for i := 0; i < 100; i++ {
		if got := r.Categorical([]float64{0, 0, 1}); got != 2 {
			t.Fatalf("Categorical([0,0,1]) = %d, want 2", got)
		}
	}
}

func TestRandomIntnZero(t *testing.T) {
	r := NewRandom(3)
	if got := r.Intn(0); got != 0 {
		t.Fatalf("Intn(0) = %d, want 0", got)
	}
}

func TestRandomGammaPositive(t *testing.T) {
	r := NewRandom(9)
	for i := 0; i < 100; i++ {
		v := r.Gamma(2.5, 1.0)
		if v < 0 {
			t.Fatalf("Gamma draw %f is negative", v)
		}
	}
	if got := r.Gamma(0, 1); got != 0 {
		t.Fatalf("Gamma(0,1) = %f, want 0", got)
	}
}

func TestRandomPermIsPermutation(t *testing.T) {
	r := NewRandom(11)
	p := r.Perm(20)
	seen := make(map[int]bool, 20)
	for _, v := range p {
		if v < 0 || v >= 20 || seen[v] {
			t.Fatalf("Perm(20) produced invalid/duplicate value %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 20 {
		t.Fatalf("Perm(20) produced %d distinct values, want 20", len(seen))
	}
}
