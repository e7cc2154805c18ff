package simcore

import "testing"

func TestImmuneComponentAcquiresWhenInfected(t *testing.T) {
	c := NewNonInfantImmuneComponent(0.1, 0.02, 0.2)
	v0 := c.LatestValue()
	v1 := c.Update(1, true)
	if v1 <= v0 {
		t.Fatalf("immunity should increase while infected: %f -> %f", v0, v1)
	}
	if c.LatestUpdateDay() != 1 {
		t.Fatalf("LatestUpdateDay() = %d, want 1", c.LatestUpdateDay())
	}
}

func TestImmuneComponentDecaysWhenNotInfected(t *testing.T) {
	c := NewNonInfantImmuneComponent(0.1, 0.2, 0.3)
	c.Update(1, true)
	v1 := c.LatestValue()
	v2 := c.Update(2, false)
	if v2 >= v1 {
		t.Fatalf("immunity should decay while uninfected: %f -> %f", v1, v2)
	}
}

func TestImmuneComponentClampedToUnitInterval(t *testing.T) {
	c := NewInfantImmuneComponent(5.0, 0.01, 5.0)
	for day := 1; day <= 50; day++ {
		v := c.Update(day, true)
		if v < 0 || v > 1 {
			t.Fatalf("immune value %f on day %d left [0,1]", v, day)
		}
	}
}

func TestClinicalRiskFactorMonotonicallyDecreasing(t *testing.T) {
	low := ClinicalRiskFactor(0.1)
	mid := ClinicalRiskFactor(0.5)
	high := ClinicalRiskFactor(0.9)
	if !(low > mid && mid > high) {
		t.Fatalf("ClinicalRiskFactor should decrease as immunity rises: low=%f mid=%f high=%f", low, mid, high)
	}
	if mid < 0.49 || mid > 0.51 {
		t.Fatalf("ClinicalRiskFactor(0.5) = %f, want ~0.5 at the sigmoid midpoint", mid)
	}
}
