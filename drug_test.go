package simcore

import (
	"math"
	"testing"
)

func TestDrugTypeDecayRate(t *testing.T) {
	d := &DrugType{HalfLife: 3}
	got := d.decayRate()
	want := math.Ln2 / 3
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("decayRate() = %f, want %f", got, want)
	}
	if (&DrugType{HalfLife: 0}).decayRate() != 0 {
		t.Fatalf("decayRate() with zero half-life should be 0, not divide by zero")
	}
}

func TestDrugTypeKillingEffectMonotonic(t *testing.T) {
	d := &DrugType{MaxKillingRate: 0.9, N: 2, EC50: 1.0}
	low := d.killingEffect(0.1)
	high := d.killingEffect(10)
	if !(low < high) {
		t.Fatalf("killingEffect should increase with concentration: low=%f high=%f", low, high)
	}
	if high >= d.MaxKillingRate {
		t.Fatalf("killingEffect(%f) = %f, should stay strictly below MaxKillingRate %f", 10.0, high, d.MaxKillingRate)
	}
	if d.killingEffect(0) != 0 {
		t.Fatalf("killingEffect(0) should be 0")
	}
}

func TestDrugInBloodDecaysOverTime(t *testing.T) {
	dt := &DrugType{HalfLife: 1, MaxKillingRate: 0.9, N: 1, EC50: 1}
	drug := NewDrugInBlood(1, 3, 100, 0)

	drug.Update(dt, 1)
	afterOneHalfLife := drug.LastUpdateValue
	if math.Abs(afterOneHalfLife-50) > 1e-6 {
		t.Fatalf("concentration after one half-life = %f, want ~50", afterOneHalfLife)
	}

	drug.Update(dt, 2)
	if drug.LastUpdateValue >= afterOneHalfLife {
		t.Fatalf("concentration should keep decreasing: %f then %f", afterOneHalfLife, drug.LastUpdateValue)
	}
	if drug.DosingDaysRemaining != 1 {
		t.Fatalf("DosingDaysRemaining = %d after two updates starting at 3, want 1", drug.DosingDaysRemaining)
	}
}

func TestDrugInBloodFinished(t *testing.T) {
	dt := &DrugType{HalfLife: 0.1, MaxKillingRate: 0.9, N: 1, EC50: 1}
	drug := NewDrugInBlood(1, 1, 10, 0)
	drug.Update(dt, 1)
	drug.Update(dt, 100) // force deep decay
	if !drug.Finished() {
		t.Fatalf("drug should be Finished() after dosing ran out and concentration decayed to ~0")
	}
}

func TestDrugDatabaseAddGet(t *testing.T) {
	db := NewDrugDatabase()
	db.Add(&DrugType{ID: 7, Name: "Artemisinin"})
	got, ok := db.Get(7)
	if !ok || got.Name != "Artemisinin" {
		t.Fatalf("Get(7) = %v, %v; want Artemisinin, true", got, ok)
	}
	if _, ok := db.Get(99); ok {
		t.Fatalf("Get(99) should report not-found for an unregistered id")
	}
}
