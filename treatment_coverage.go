package simcore

// TreatmentCoverage answers p_treatment(location, age) (spec 4.3 step 4),
// loaded from pr_treatment_under5/pr_treatment_over5 (spec section 6) and
// mutated in place by EventAnnualCoverageUpdate and
// EventChangeTreatmentCoverage population events.
type TreatmentCoverage struct {
	// underFiveRate/overFiveRate are indexed by location; a location beyond
	// either slice's length falls back to the last defined entry.
	underFiveRate []float64
	overFiveRate  []float64
}

// NewTreatmentCoverage creates a coverage table sized to locationCount,
// every location starting at rate 0 until config load populates it.
func NewTreatmentCoverage(locationCount int) *TreatmentCoverage {
	return &TreatmentCoverage{
		underFiveRate: make([]float64, locationCount),
		overFiveRate:  make([]float64, locationCount),
	}
}

// SetUnderFive sets pr_treatment_under5 for one location.
func (c *TreatmentCoverage) SetUnderFive(location uint32, rate float64) {
	if int(location) < len(c.underFiveRate) {
		c.underFiveRate[location] = rate
	}
}

// SetOverFive sets pr_treatment_over5 for one location.
func (c *TreatmentCoverage) SetOverFive(location uint32, rate float64) {
	if int(location) < len(c.overFiveRate) {
		c.overFiveRate[location] = rate
	}
}

// ProbabilityTreated returns p_treatment(location, age), the age-5 cutoff
// being the only age split the original config surface exposes.
func (c *TreatmentCoverage) ProbabilityTreated(location uint32, ageYears float64) float64 {
	rates := c.overFiveRate
	if ageYears < 5 {
		rates = c.underFiveRate
	}
	if len(rates) == 0 {
		return 0
	}
	idx := int(location)
	if idx >= len(rates) {
		idx = len(rates) - 1
	}
	return rates[idx]
}

// ScaleAll multiplies every location's rates by factor, the effect of
// EventAnnualCoverageUpdate (spec's population event list).
func (c *TreatmentCoverage) ScaleAll(factor float64) {
	for i := range c.underFiveRate {
		c.underFiveRate[i] *= factor
	}
	for i := range c.overFiveRate {
		c.overFiveRate[i] *= factor
	}
}
