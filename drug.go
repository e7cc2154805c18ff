package simcore

import "math"

// DrugType is an entry from the drug_db config section (spec section 6):
// half-life, killing-rate parameters, mutation probability and which loci
// the drug exerts selective pressure on.
type DrugType struct {
	ID               int
	Name             string
	HalfLife         float64 // days
	MaxKillingRate   float64 // per-day log10 reduction at full concentration
	N                float64 // Hill-function steepness
	EC50             float64 // concentration at half-maximal effect
	MutationProb     float64 // probability of selecting a resistant allele under pressure
	AffectingLoci    []int
	ResistantAllele  []int // per-locus resistant allele id, parallel to AffectingLoci
}

// decayRate converts a half-life into the per-day exponential decay
// constant: concentration(t) = starting_value * exp(-decayRate * t).
func (d *DrugType) decayRate() float64 {
	if d.HalfLife <= 0 {
		return 0
	}
	return math.Ln2 / d.HalfLife
}

// killingEffect returns the Hill-function killing rate at a given blood
// concentration, the standard PK/PD curve used by the original's
// ParasiteDensityUpdateFunction drug step.
func (d *DrugType) killingEffect(concentration float64) float64 {
	if concentration <= 0 {
		return 0
	}
	ratio := math.Pow(concentration/d.EC50, d.N)
	return d.MaxKillingRate * ratio / (ratio + 1)
}

// DrugInBlood is a dosing course in progress inside one Person, owned by
// that Person (spec section 3).
type DrugInBlood struct {
	DrugTypeID         int
	DosingDaysRemaining int
	StartingValue      float64
	LastUpdateValue    float64
	LastUpdateDay      int
}

// NewDrugInBlood starts a fresh dosing course.
func NewDrugInBlood(drugTypeID int, dosingDays int, startingValue float64, day int) *DrugInBlood {
	return &DrugInBlood{
		DrugTypeID:          drugTypeID,
		DosingDaysRemaining: dosingDays,
		StartingValue:       startingValue,
		LastUpdateValue:     startingValue,
		LastUpdateDay:       day,
	}
}

// Update advances the drug concentration by one day's exponential decay
// and returns the killing effect exerted at the new concentration. Once
// DosingDaysRemaining reaches zero and the concentration has decayed
// below a negligible threshold, the caller (Population.dailyUpdate)
// removes this entry from the host.
func (d *DrugInBlood) Update(dt *DrugType, day int) (killingEffect float64) {
	elapsed := float64(day - d.LastUpdateDay)
	if elapsed < 0 {
		elapsed = 0
	}
	d.LastUpdateValue = d.LastUpdateValue * math.Exp(-dt.decayRate()*elapsed)
	d.LastUpdateDay = day
	if d.DosingDaysRemaining > 0 {
		d.DosingDaysRemaining--
	}
	return dt.killingEffect(d.LastUpdateValue)
}

// Finished reports whether this dosing course has run out and its
// concentration has decayed to a negligible level.
func (d *DrugInBlood) Finished() bool {
	return d.DosingDaysRemaining <= 0 && d.LastUpdateValue < 1e-6
}

// DrugDatabase is the loaded drug_db config section: drug id -> DrugType.
type DrugDatabase struct {
	drugs map[int]*DrugType
}

// NewDrugDatabase creates an empty database; entries are added via Add
// while loading config.
func NewDrugDatabase() *DrugDatabase {
	return &DrugDatabase{drugs: make(map[int]*DrugType)}
}

// Add registers a drug type, keyed by its own ID.
func (db *DrugDatabase) Add(d *DrugType) { db.drugs[d.ID] = d }

// Get looks up a drug type by id. The second return is false if the id
// is not registered, which is a ConfigError at load time (spec 4.7) and
// never expected once the scenario has validated.
func (db *DrugDatabase) Get(id int) (*DrugType, bool) {
	d, ok := db.drugs[id]
	return d, ok
}
