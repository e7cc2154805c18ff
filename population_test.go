package simcore

import "testing"

func TestPopulationAgeClassForStrictGreaterBoundary(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	pop.AgeClassBoundaries = []float64{5, 15}

	cases := []struct {
		age  float64
		want uint8
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{14.99, 1},
		{15, 1},
		{100, 1},
	}
	for _, c := range cases {
		if got := pop.ageClassFor(c.age); got != c.want {
			t.Fatalf("ageClassFor(%v) = %d, want %d", c.age, got, c.want)
		}
	}
}

func TestPopulationBirthdayMigratesAgeClass(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	pop.AgeClassBoundaries = []float64{1.0 / 365.0 * 2, 1} // class upper bounds at age 2 days and 1 year

	p := pop.AddNewPerson(0, 1, nil)
	if p.AgeClassIndex != 0 {
		t.Fatalf("initial AgeClassIndex = %d, want 0", p.AgeClassIndex)
	}

	pop.Birthday(p)
	pop.Birthday(p)

	if p.AgeDays != 3 {
		t.Fatalf("AgeDays = %d, want 3 after two birthdays from 1", p.AgeDays)
	}
	if p.AgeClassIndex != 1 {
		t.Fatalf("AgeClassIndex = %d, want 1 after crossing the boundary", p.AgeClassIndex)
	}
}

func TestPopulationSetStateClearsToSusceptibleWhenCuredInDailyUpdate(t *testing.T) {
	levels := ParasiteDensityLevels{LogCured: 1, LogDetectable: 3}
	pop := NewPopulation(levels, 1)
	p := pop.AddNewPerson(0, 365*10, NewNonInfantImmuneComponent(0.01, 0.01, 0.1))
	pop.SetState(p, Asymptomatic)

	c := NewParasiteClone(1, 1.5, 0)
	c.UpdateFn = UpdateImmunityClearance
	p.AddClone(c)

	r := NewRandom(1)
	// Drive the clone's density below LogCured by running enough days of
	// immunity-driven clearance with a deliberately large immune factor.
	for i := 0; i < 50 && len(p.Clones) > 0; i++ {
		pop.DailyUpdate(i, r)
	}

	if p.HostState != Susceptible {
		t.Fatalf("host state = %v, want Susceptible once all clones clear", p.HostState)
	}
	if !p.ClearedAllClones() {
		t.Fatalf("expected clones to have cleared")
	}
}

func TestPopulationDailyUpdateSkipsDead(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	p := pop.AddNewPerson(0, 365*30, NewNonInfantImmuneComponent(0.01, 0.01, 0.1))
	pop.SetState(p, Dead)
	p.AddClone(NewParasiteClone(1, 5, 0))

	r := NewRandom(1)
	pop.DailyUpdate(1, r)

	if len(p.Clones) != 1 {
		t.Fatalf("DailyUpdate should not touch a Dead person's clones")
	}
}

func TestPopulationSetLocationNotifiesIndices(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 2)
	p := pop.AddNewPerson(0, 365*10, nil)

	pop.SetLocation(p, 1)

	if p.Location != 1 {
		t.Fatalf("Location = %d, want 1", p.Location)
	}
	if got := pop.Indices.ByLocationStateAge.Bucket(0, Susceptible, 0); len(got) != 0 {
		t.Fatalf("old location bucket still has entries after SetLocation")
	}
	if got := pop.Indices.ByLocationStateAge.Bucket(1, Susceptible, 0); len(got) != 1 {
		t.Fatalf("new location bucket has %d entries, want 1", len(got))
	}
}
