package simcore

import "testing"

type fixedBeta struct {
	beta               float64
	seasonal           float64
	circulationPercent float64
}

func (b fixedBeta) Beta(uint32) float64                  { return b.beta }
func (b fixedBeta) SeasonalFactor(uint32, int) float64    { return b.seasonal }
func (b fixedBeta) CirculationPercent() float64           { return b.circulationPercent }

func TestBitingStepNoOpWithoutBeta(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{LogDetectable: 1}, 1)
	pop.AddNewPerson(0, 365*20, nil)
	sched, _ := newTestScheduler(100)
	r := NewRandom(1)

	pop.BitingStep(0, sched, r) // pop.Beta is nil; must not panic

	for _, p := range pop.Indices.All.All() {
		if p.HostState != Susceptible {
			t.Fatalf("a person was infected despite no BetaProvider being wired")
		}
	}
}

func TestBitingStepInfectsWithHighExpectedBites(t *testing.T) {
	levels := ParasiteDensityLevels{LogCured: 0, LogDetectable: 1}
	pop := NewPopulation(levels, 1)
	pop.Beta = fixedBeta{beta: 1000, seasonal: 1, circulationPercent: 1}
	pop.Genotypes = NewGenotypeTree([]int{2})

	infector := pop.AddNewPerson(0, 365*20, nil)
	infector.InnateRelativeBitingRate = 1
	infector.AddClone(NewParasiteClone(1, 5, 0)) // well above LogDetectable, fully infectious
	pop.SetState(infector, Asymptomatic)

	recipient := pop.AddNewPerson(0, 365*20, nil)
	recipient.InnateRelativeBitingRate = 1

	sched, _ := newTestScheduler(100)
	r := NewRandom(1)
	pop.BitingStep(0, sched, r)

	if recipient.HostState != Exposed {
		t.Fatalf("recipient state = %v, want Exposed after ~1000 expected infectious bites", recipient.HostState)
	}
}

func TestBitingStepEmptyLocationIsNoOp(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	pop.Beta = fixedBeta{beta: 100, seasonal: 1, circulationPercent: 1}
	sched, _ := newTestScheduler(100)
	r := NewRandom(1)

	// No residents added; must not panic on an empty location.
	pop.BitingStep(0, sched, r)
}
