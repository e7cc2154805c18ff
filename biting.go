package simcore

// moveParasiteToBloodPayload carries the genotype a newly-infected host's
// liver-stage clone will emerge with (spec 4.3's
// EXPOSED -> MoveParasiteToBlood -> ASYMPTOMATIC transition).
type moveParasiteToBloodPayload struct {
	GenotypeID uint64
}

// LiverDurationDays is the fixed incubation period between an infective
// bite and MoveParasiteToBlood firing (spec 4.3).
const LiverDurationDays = 12

// BitingStep implements spec 4.5.2: per location, draw a Poisson count of
// new infectious bites from the expected-bites formula, then assign each
// bite a weighted-random recipient and, for susceptible recipients, schedule
// the liver-stage transition with a genotype possibly inherited (mutated)
// from the donor clone that infected the mosquito.
func (pop *Population) BitingStep(day int, sched *Scheduler, r *Random) {
	for loc := uint32(0); loc < pop.LocationCount; loc++ {
		pop.bitingStepForLocation(loc, day, sched, r)
	}
}

func (pop *Population) bitingStepForLocation(loc uint32, day int, sched *Scheduler, r *Random) {
	if pop.Beta == nil {
		return
	}
	residents := pop.residentsAt(loc)
	if len(residents) == 0 {
		return
	}

	weights := make([]float64, len(residents))
	infectiousnessSum := 0.0
	for i, p := range residents {
		weights[i] = p.InnateRelativeBitingRate
		if weights[i] <= 0 {
			weights[i] = 1
		}
		infectiousnessSum += weights[i] * pop.hostInfectiousness(p)
	}
	if infectiousnessSum <= 0 {
		return
	}

	expected := pop.Beta.Beta(loc) * pop.Beta.SeasonalFactor(loc, day) * pop.Beta.CirculationPercent() * infectiousnessSum
	if expected <= 0 {
		return
	}
	bites := r.Poisson(expected)
	if bites <= 0 {
		return
	}

	for i := 0; i < bites; i++ {
		idx := r.Categorical(weights)
		recipient := residents[idx]
		if recipient.HostState != Susceptible {
			continue
		}
		donorGenotype := pop.sampleDonorGenotype(loc, r)
		genotypeID := donorGenotype
		if pop.Genotypes != nil {
			genotypeID = pop.Genotypes.Inherit(donorGenotype, r)
		}
		pop.SetState(recipient, Exposed)
		sched.ScheduleIndividual(recipient, recipient.ID, EventMoveParasiteToBlood, day+LiverDurationDays,
			&moveParasiteToBloodPayload{GenotypeID: genotypeID})
	}
}

// residentsAt returns the live, non-dead persons currently located at loc,
// across every state/age_class bucket, by scanning the age-class index.
// Using PersonIndexByLocationStateAgeClass here (rather than PersonIndexAll)
// keeps the biting step from paying an O(population) scan per location.
func (pop *Population) residentsAt(loc uint32) []*Person {
	var out []*Person
	for state := Susceptible; state <= Clinical; state++ {
		for ageClass := uint8(0); ageClass < uint8(len(pop.AgeClassBoundaries))+1; ageClass++ {
			out = append(out, pop.Indices.ByLocationStateAge.Bucket(loc, state, ageClass)...)
		}
	}
	return out
}

// hostInfectiousness sums the infectiousness of every clone a host carries,
// the per-person contribution to a location's expected-bites formula.
func (pop *Population) hostInfectiousness(p *Person) float64 {
	total := 0.0
	for _, c := range p.Clones {
		total += c.Infectiousness(pop.Levels)
	}
	return total
}

// sampleDonorGenotype picks a genotype id to seed a new infection with by
// sampling proportionally to infectiousness among the location's current
// carriers. Falls back to genotype id 0 (the reserved "no genotype"
// sentinel, not the wild-type root at id 1) if nobody at loc is currently
// infectious, e.g. for imported-case seeding before local transmission
// exists.
func (pop *Population) sampleDonorGenotype(loc uint32, r *Random) uint64 {
	var clones []*ParasiteClone
	var weights []float64
	for state := Asymptomatic; state <= Clinical; state++ {
		for ageClass := uint8(0); ageClass < uint8(len(pop.AgeClassBoundaries))+1; ageClass++ {
			for _, p := range pop.Indices.ByLocationStateAge.Bucket(loc, state, ageClass) {
				for _, c := range p.Clones {
					inf := c.Infectiousness(pop.Levels)
					if inf <= 0 {
						continue
					}
					clones = append(clones, c)
					weights = append(weights, inf)
				}
			}
		}
	}
	if len(clones) == 0 {
		return 0
	}
	idx := r.Categorical(weights)
	return clones[idx].GenotypeID
}
