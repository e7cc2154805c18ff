package simcore

import "testing"

func TestSFTStrategyAlwaysSameTherapy(t *testing.T) {
	therapies := NewTherapyDatabase()
	therapies.Add(&Therapy{ID: 1, Name: "AL"})
	s := &SFTStrategy{StrategyID: 1, TherapyID: 1}

	got := s.GetTherapy(nil, 0, therapies)
	if got == nil || got.ID != 1 {
		t.Fatalf("SFTStrategy.GetTherapy = %v, want therapy id 1", got)
	}
}

func TestCyclingStrategyAdvanceWraps(t *testing.T) {
	s := NewCyclingStrategy(1, []int{10, 20, 30}, 100)
	if s.DueForSwitch(50) {
		t.Fatalf("should not be due for switch before PeriodDays elapses")
	}
	if !s.DueForSwitch(100) {
		t.Fatalf("should be due for switch once PeriodDays have elapsed")
	}

	therapies := NewTherapyDatabase()
	therapies.Add(&Therapy{ID: 10})
	therapies.Add(&Therapy{ID: 20})
	therapies.Add(&Therapy{ID: 30})

	first, _ := therapies.Get(s.TherapyIDs[s.activeIndex])
	if first.ID != 10 {
		t.Fatalf("initial active therapy = %d, want 10", first.ID)
	}

	s.Advance(100)
	s.Advance(200)
	s.Advance(300)
	if s.activeIndex != 0 {
		t.Fatalf("after 3 advances over a 3-item list, activeIndex = %d, want wrap to 0", s.activeIndex)
	}
}

func TestMFTAgeBasedStrategyStrictGreaterBoundary(t *testing.T) {
	s := &MFTAgeBasedStrategy{
		StrategyID: 1,
		TherapyIDs: []int{1, 2, 3},
		Boundaries: []float64{5, 15},
	}

	cases := []struct {
		age  float64
		want int
	}{
		{0, 0},
		{4.9, 0},
		{5, 1},  // REDESIGN FLAG: boundary itself belongs to the next band
		{5.1, 1},
		{15, 2},
		{100, 2},
	}
	for _, c := range cases {
		if got := s.TherapyIndexForAge(c.age); got != c.want {
			t.Fatalf("TherapyIndexForAge(%v) = %d, want %d", c.age, got, c.want)
		}
	}
}

func TestMFTStrategyPickTherapyIDRespectsWeights(t *testing.T) {
	s := &MFTStrategy{StrategyID: 1, TherapyIDs: []int{1, 2}, Weights: []float64{0, 1}}
	r := NewRandom(3)
	for i := 0; i < 50; i++ {
		if got := s.PickTherapyID(r); got != 2 {
			t.Fatalf("PickTherapyID with weights [0,1] = %d, want 2 every time", got)
		}
	}
}

func TestNestedMFTStrategyFallsBackToDefault(t *testing.T) {
	therapies := NewTherapyDatabase()
	therapies.Add(&Therapy{ID: 1})
	therapies.Add(&Therapy{ID: 2})

	sub := &SFTStrategy{StrategyID: 10, TherapyID: 1}
	fallback := &SFTStrategy{StrategyID: 11, TherapyID: 2}

	nested := &NestedMFTStrategy{
		StrategyID:  1,
		Partitioner: ByLocationPartitioner,
		ByPartition: map[int]Strategy{0: sub},
		Default:     fallback,
	}

	inPartition := NewPerson(1, 0, 0, nil)
	got := nested.GetTherapy(inPartition, 0, therapies)
	if got == nil || got.ID != 1 {
		t.Fatalf("partitioned person got therapy %v, want id 1", got)
	}

	outOfPartition := NewPerson(2, 7, 0, nil)
	got = nested.GetTherapy(outOfPartition, 0, therapies)
	if got == nil || got.ID != 2 {
		t.Fatalf("unpartitioned person got therapy %v, want default id 2", got)
	}
}

func TestStrategyDatabaseActive(t *testing.T) {
	db := NewStrategyDatabase()
	if db.Active() != nil {
		t.Fatalf("empty database should report no active strategy")
	}
	db.Add(&SFTStrategy{StrategyID: 1, TherapyID: 5})
	db.SetActive(1)
	active := db.Active()
	if active == nil || active.ID() != 1 {
		t.Fatalf("Active() = %v, want strategy id 1", active)
	}
}
