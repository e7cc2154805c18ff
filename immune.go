package simcore

import "math"

// ImmuneComponent tracks acquired immunity, one per Person (spec section
// 3). Two variants share the interface: Infant immunity decays faster and
// acquires slower than NonInfant, switching over at a configured
// age-of-maturity.
type ImmuneComponent interface {
	// LatestValue returns the immune level as of LatestUpdateDay.
	LatestValue() float64
	LatestUpdateDay() int
	// Update advances immunity by one day given whether the host is
	// currently carrying a clinical or detectable infection (which drives
	// acquisition) and returns the new value.
	Update(day int, infected bool) float64
}

// immuneParams are the acquire/decay rates loaded from
// `immune_system_information` (spec section 6).
type immuneParams struct {
	acquireRate float64
	decayRate   float64
	dueToSick   float64 // extra acquisition while infected (asymptomatic or clinical)
}

type infantImmuneComponent struct {
	params          immuneParams
	latestValue     float64
	latestUpdateDay int
}

// NewInfantImmuneComponent creates the fast-decaying, slow-acquiring
// immune variant used for hosts below the configured age-of-maturity.
func NewInfantImmuneComponent(acquireRate, decayRate, dueToSick float64) ImmuneComponent {
	return &infantImmuneComponent{params: immuneParams{acquireRate, decayRate, dueToSick}}
}

func (c *infantImmuneComponent) LatestValue() float64   { return c.latestValue }
func (c *infantImmuneComponent) LatestUpdateDay() int   { return c.latestUpdateDay }

func (c *infantImmuneComponent) Update(day int, infected bool) float64 {
	c.latestValue = stepImmunity(c.latestValue, c.params, infected)
	c.latestUpdateDay = day
	return c.latestValue
}

type nonInfantImmuneComponent struct {
	params          immuneParams
	latestValue     float64
	latestUpdateDay int
}

// NewNonInfantImmuneComponent creates the adult-pattern immune variant.
func NewNonInfantImmuneComponent(acquireRate, decayRate, dueToSick float64) ImmuneComponent {
	return &nonInfantImmuneComponent{params: immuneParams{acquireRate, decayRate, dueToSick}}
}

func (c *nonInfantImmuneComponent) LatestValue() float64 { return c.latestValue }
func (c *nonInfantImmuneComponent) LatestUpdateDay() int { return c.latestUpdateDay }

func (c *nonInfantImmuneComponent) Update(day int, infected bool) float64 {
	c.latestValue = stepImmunity(c.latestValue, c.params, infected)
	c.latestUpdateDay = day
	return c.latestValue
}

// stepImmunity is the shared sigmoid-ish acquire/decay step both variants
// use, parameterized by their own rates (spec's immune_system_information
// "sigmoid midpoint" is folded into acquireRate's effective saturation via
// the (1-value) term below).
func stepImmunity(value float64, p immuneParams, infected bool) float64 {
	acquire := p.acquireRate
	if infected {
		acquire += p.dueToSick
	}
	value += acquire * (1 - value)
	value -= p.decayRate * value
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// ClinicalRiskFactor converts an immune level into a multiplicative
// reduction applied to the probability of progressing to clinical
// disease: higher immunity, lower risk. Grounded on the original's
// sigmoid midpoint design for the probability-of-clinical step.
func ClinicalRiskFactor(immuneValue float64) float64 {
	return 1 / (1 + math.Exp(8*(immuneValue-0.5)))
}
