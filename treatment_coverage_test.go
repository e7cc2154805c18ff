package simcore

import "testing"

func TestTreatmentCoverageAgeSplit(t *testing.T) {
	c := NewTreatmentCoverage(2)
	c.SetUnderFive(0, 0.3)
	c.SetOverFive(0, 0.8)

	if got := c.ProbabilityTreated(0, 2); got != 0.3 {
		t.Fatalf("ProbabilityTreated(loc0, age2) = %f, want 0.3", got)
	}
	if got := c.ProbabilityTreated(0, 5); got != 0.8 {
		t.Fatalf("ProbabilityTreated(loc0, age5) = %f, want 0.8 (5 is not under-five)", got)
	}
}

func TestTreatmentCoverageLocationFallback(t *testing.T) {
	c := NewTreatmentCoverage(1)
	c.SetOverFive(0, 0.5)
	if got := c.ProbabilityTreated(99, 10); got != 0.5 {
		t.Fatalf("ProbabilityTreated for an out-of-range location = %f, want fallback to last entry 0.5", got)
	}
}

func TestTreatmentCoverageScaleAll(t *testing.T) {
	c := NewTreatmentCoverage(1)
	c.SetUnderFive(0, 0.4)
	c.SetOverFive(0, 0.6)
	c.ScaleAll(0.5)
	if got := c.ProbabilityTreated(0, 1); got != 0.2 {
		t.Fatalf("under-five rate after ScaleAll(0.5) = %f, want 0.2", got)
	}
	if got := c.ProbabilityTreated(0, 20); got != 0.3 {
		t.Fatalf("over-five rate after ScaleAll(0.5) = %f, want 0.3", got)
	}
}
