package simcore

import "math"

// ParasiteUpdateFunction selects which closed-form density step a clone
// follows on a given day, per spec section 3/4.5.
type ParasiteUpdateFunction uint8

const (
	UpdateLiver ParasiteUpdateFunction = iota
	UpdateClinicalProgression
	UpdateClinical
	UpdateImmunityClearance
	UpdateDrug
)

// ParasiteClone is one parasite lineage living inside a Person, owned by
// that Person (spec section 3). genotypeID ties the clone back to a node
// in the mutation lineage tree (genotype.go).
type ParasiteClone struct {
	GenotypeID            uint64
	LastUpdateLog10Density float64
	FirstUpdateDay        int
	UpdateFn              ParasiteUpdateFunction
}

// NewParasiteClone creates a clone freshly moved into the blood (from
// liver schizogony) at the given log10 density.
func NewParasiteClone(genotypeID uint64, log10Density float64, day int) *ParasiteClone {
	return &ParasiteClone{
		GenotypeID:             genotypeID,
		LastUpdateLog10Density: log10Density,
		FirstUpdateDay:         day,
		UpdateFn:               UpdateLiver,
	}
}

// ParasiteDensityLevels holds the log10-density thresholds from
// `parasite_density_level` (spec section 6): cured, from-liver, the
// clinical range, detectable and pyrogenic thresholds.
type ParasiteDensityLevels struct {
	LogCured             float64
	LogFromLiver         float64
	LogClinicalFrom      float64
	LogClinicalTo        float64
	LogDetectable        float64
	LogPyrogenicThreshold float64
}

// Update advances the clone's density by one day according to its current
// update function. growthRate/killingRate/immuneFactor are supplied by
// the caller (Population.dailyUpdate) since they depend on the host's
// immune state and any drugs in blood, not on the clone alone.
func (c *ParasiteClone) Update(day int, levels ParasiteDensityLevels, growthRate, killingRate, immuneFactor float64) {
	switch c.UpdateFn {
	case UpdateLiver, UpdateClinicalProgression:
		// Asymptomatic logistic-ish growth net of baseline immune pressure.
		c.LastUpdateLog10Density += growthRate - immuneFactor
	case UpdateClinical:
		// Clinical parasitemia grows quickly until treatment/immunity acts.
		c.LastUpdateLog10Density += growthRate*1.5 - immuneFactor
	case UpdateImmunityClearance:
		c.LastUpdateLog10Density -= immuneFactor
	case UpdateDrug:
		c.LastUpdateLog10Density -= killingRate
	}
	if c.LastUpdateLog10Density < levels.LogCured {
		c.LastUpdateLog10Density = math.Inf(-1) // sentinel: caller clears this clone
	}
}

// Cured reports whether the clone's density has fallen below the cured
// threshold and should be removed from the host (spec section 4.5).
func (c *ParasiteClone) Cured() bool {
	return math.IsInf(c.LastUpdateLog10Density, -1)
}

// Infectiousness returns a value in [0,1] describing how likely this
// clone is to be picked up by a biting mosquito, a monotonic function of
// log10 density saturating at 1 once density clears the detectable
// threshold. Grounded on the teacher's exp-normalize pattern in
// evoepi_simulation.go's relative-fitness replication step.
func (c *ParasiteClone) Infectiousness(levels ParasiteDensityLevels) float64 {
	if c.LastUpdateLog10Density <= levels.LogCured {
		return 0
	}
	span := levels.LogDetectable - levels.LogCured
	if span <= 0 {
		return 1
	}
	v := (c.LastUpdateLog10Density - levels.LogCured) / span
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
