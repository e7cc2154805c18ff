package simcore

import "testing"

func TestDataCollectorRecordAndSnapshot(t *testing.T) {
	d := NewDataCollector(2)
	d.RecordClinicalEpisode(0, 1)
	d.RecordClinicalEpisode(0, 1)
	d.RecordTreatment(0, 3)  // under 5
	d.RecordTreatment(0, 10) // over 5
	d.RecordTreatmentFailure(0)
	d.RecordNonTreatment(1)
	d.RecordDeath(1)

	snap := d.Snapshot()
	if snap[0].ClinicalEpisodes != 2 {
		t.Fatalf("location 0 ClinicalEpisodes = %d, want 2", snap[0].ClinicalEpisodes)
	}
	if snap[0].ClinicalByAgeClass[1] != 2 {
		t.Fatalf("location 0 age-class 1 episodes = %d, want 2", snap[0].ClinicalByAgeClass[1])
	}
	if snap[0].Treatments != 2 || snap[0].Under5Treatment != 1 || snap[0].Over5Treatment != 1 {
		t.Fatalf("location 0 treatment split wrong: %+v", snap[0])
	}
	if snap[0].TreatmentFailures != 1 {
		t.Fatalf("location 0 TreatmentFailures = %d, want 1", snap[0].TreatmentFailures)
	}
	if snap[1].NonTreatment != 1 || snap[1].Deaths != 1 {
		t.Fatalf("location 1 counters wrong: %+v", snap[1])
	}
}

func TestDataCollectorOutOfRangeLocationIsIgnored(t *testing.T) {
	d := NewDataCollector(1)
	d.RecordDeath(99) // out of range, must not panic or corrupt state
	snap := d.Snapshot()
	if snap[0].Deaths != 0 {
		t.Fatalf("out-of-range location write leaked into location 0")
	}
}

func TestDataCollectorReset(t *testing.T) {
	d := NewDataCollector(1)
	d.RecordClinicalEpisode(0, 2)
	d.RecordTreatment(0, 1)
	d.Reset()
	snap := d.Snapshot()
	if snap[0].ClinicalEpisodes != 0 || snap[0].Treatments != 0 || len(snap[0].ClinicalByAgeClass) != 0 {
		t.Fatalf("counters not zeroed after Reset: %+v", snap[0])
	}
}

func TestPopulationAtLocationCountsAcrossStatesAndAgeClasses(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	a := pop.AddNewPerson(0, 365*2, nil)
	b := pop.AddNewPerson(0, 365*2, nil)
	pop.SetState(a, Clinical)

	if got := pop.PopulationAtLocation(0, 0); got != 2 {
		t.Fatalf("PopulationAtLocation = %d, want 2 (one Susceptible, one Clinical)", got)
	}
	_ = b
}

func TestPfPrAtLocationCountsOnlyInfected(t *testing.T) {
	pop := NewPopulation(ParasiteDensityLevels{}, 1)
	infected := pop.AddNewPerson(0, 365*2, nil)
	infected.AddClone(NewParasiteClone(1, 5, 0))
	pop.AddNewPerson(0, 365*3, nil)

	gotInfected, total := pop.PfPrAtLocation(0, 0, 0, 18)
	if total != 2 {
		t.Fatalf("PfPrAtLocation total = %d, want 2", total)
	}
	if gotInfected != 1 {
		t.Fatalf("PfPrAtLocation infected = %d, want 1", gotInfected)
	}
}
