package simcore

// BetaProvider supplies the location-specific transmission intensity and
// its seasonal/circulation modifiers used by the biting step (spec 4.5.2).
// Implemented by SpatialData (spatial.go).
type BetaProvider interface {
	Beta(location uint32) float64
	SeasonalFactor(location uint32, day int) float64
	CirculationPercent() float64
}

// GenotypeSource supplies the genotype drawn for a freshly-infected clone,
// possibly mutated from a donor clone's genotype (spec 4.5.2's "possibly
// mutated from donor clone"). Implemented by GenotypeTree (genotype.go).
type GenotypeSource interface {
	Inherit(donorGenotypeID uint64, r *Random) uint64
}

// Population owns the Person arena and the indices over it, and drives the
// per-day update described in spec section 4.5. It is itself a Dispatcher
// so population-wide events (ChangeStrategy, ImportationPeriodically, ...)
// have somewhere to file their EventIDs (spec 4.2).
type Population struct {
	persons map[uint64]*Person
	nextID  uint64
	eventIDs []EventID

	Indices *IndexSet

	Levels    ParasiteDensityLevels
	DrugDB    *DrugDatabase
	Genotypes GenotypeSource
	Beta      BetaProvider

	// LocationCount bounds the valid range for Person.Location and the
	// per-location arrays the biting/movement steps iterate over.
	LocationCount uint32

	// AgeClassBoundaries is number_of_age_classes upper bounds in years
	// (spec section 6's age_structure), ascending.
	AgeClassBoundaries []float64

	// RelativeBitingLevels/RelativeMovingLevels hold the discrete rate
	// values an age/draw maps onto (spec's relative_biting_info /
	// relative_moving_info).
	RelativeBitingLevels  []float64
	RelativeMovingLevels  []float64
}

// NewPopulation creates an empty Population. DrugDB, Genotypes and Beta are
// wired in after config load (simulation.go).
func NewPopulation(levels ParasiteDensityLevels, locationCount uint32) *Population {
	return &Population{
		persons:       make(map[uint64]*Person),
		Indices:       NewIndexSet(),
		Levels:        levels,
		LocationCount: locationCount,
	}
}

// DispatcherID satisfies Dispatcher; Population uses the sentinel id 0,
// which no Person (ids start at 1 via AddNewPerson) ever collides with.
func (pop *Population) DispatcherID() uint64 { return 0 }

func (pop *Population) addEventID(id EventID)    { pop.eventIDs = append(pop.eventIDs, id) }
func (pop *Population) removeEventID(id EventID) {
	for i, existing := range pop.eventIDs {
		if existing == id {
			pop.eventIDs[i] = pop.eventIDs[len(pop.eventIDs)-1]
			pop.eventIDs = pop.eventIDs[:len(pop.eventIDs)-1]
			return
		}
	}
}

// AddNewPerson creates and registers a fresh Person (birth or initial
// seeding), returning it for the caller to schedule Birthday/UpdateEveryKDays
// events against.
func (pop *Population) AddNewPerson(location uint32, ageDays uint32, immune ImmuneComponent) *Person {
	pop.nextID++
	p := NewPerson(pop.nextID, location, ageDays, immune)
	p.AgeClassIndex = pop.ageClassFor(p.AgeYears())
	pop.persons[p.ID] = p
	pop.Indices.AddPerson(p)
	return pop.persons[p.ID]
}

// Get looks up a person by id, or nil if dead/never existed.
func (pop *Population) Get(id uint64) *Person { return pop.persons[id] }

// Remove drops a dead person from the arena and every index (spec
// Invariant 3: a DEAD person holds nothing and is no longer indexed for
// biting/movement purposes, though callers may keep the id for reporting).
func (pop *Population) Remove(p *Person) {
	pop.Indices.RemovePerson(p)
	delete(pop.persons, p.ID)
}

// SetLocation changes p's location and notifies every index, the only
// sanctioned way to mutate Person.Location (spec 4.4's mandatory
// notification rule).
func (pop *Population) SetLocation(p *Person, newLocation uint32) {
	old := p.Location
	if old == newLocation {
		return
	}
	p.Location = newLocation
	pop.Indices.NotifyChange(p, FieldLocation, int(old))
}

// SetState changes p's host state and notifies every index.
func (pop *Population) SetState(p *Person, newState HostState) {
	old := p.HostState
	if old == newState {
		return
	}
	p.HostState = newState
	pop.Indices.NotifyChange(p, FieldState, int(old))
}

// SetMovingLevel changes p's moving level and notifies every index.
func (pop *Population) SetMovingLevel(p *Person, newLevel uint16) {
	old := p.MovingLevelIndex
	if old == newLevel {
		return
	}
	p.MovingLevelIndex = newLevel
	pop.Indices.NotifyChange(p, FieldMovingLevel, int(old))
}

// ageClassFor maps an age in years onto the configured age-class index: the
// count of boundaries at or below ageYears, capped at the last class.
// REDESIGN FLAG (spec section 9): boundary ties resolve strictly-greater,
// i.e. a person exactly at a boundary belongs to the class it enters, not
// the one it's leaving -- consistent with the MFT-age-based rule in 4.6.
func (pop *Population) ageClassFor(ageYears float64) uint8 {
	count := 0
	for _, b := range pop.AgeClassBoundaries {
		if ageYears >= b {
			count++
		} else {
			break
		}
	}
	if count >= len(pop.AgeClassBoundaries) && len(pop.AgeClassBoundaries) > 0 {
		count = len(pop.AgeClassBoundaries) - 1
	}
	return uint8(count)
}

// Birthday ages p by one day and migrates it between age classes if the
// recomputed class differs (spec 4.3's "any -> Birthday daily").
func (pop *Population) Birthday(p *Person) {
	p.AgeDays++
	newClass := pop.ageClassFor(p.AgeYears())
	if newClass != p.AgeClassIndex {
		old := p.AgeClassIndex
		p.AgeClassIndex = newClass
		pop.Indices.NotifyChange(p, FieldAgeClass, int(old))
	}
}

// DailyUpdate performs step 1 of spec 4.5 over every living person: advance
// each clone and drug, update immunity, clear cured clones, and transition
// EXPOSED/ASYMPTOMATIC hosts with no remaining clones back to SUSCEPTIBLE.
// Biting (biting.go) and movement (movement.go) are separate steps the
// caller (simulation.go's tick loop) invokes afterward.
func (pop *Population) DailyUpdate(day int, r *Random) {
	for _, p := range pop.Indices.All.All() {
		if p.HostState == Dead {
			continue
		}
		pop.updateDrugs(p, day)
		pop.updateClones(p, day, r)
		infected := p.HostState == Clinical || p.HostState == Asymptomatic
		if p.Immune != nil {
			p.Immune.Update(day, infected)
		}
		if p.ClearedAllClones() && (p.HostState == Exposed || p.HostState == Asymptomatic) {
			pop.SetState(p, Susceptible)
		}
	}
}

func (pop *Population) updateDrugs(p *Person, day int) {
	if len(p.Drugs) == 0 {
		return
	}
	finished := p.Drugs[:0:0]
	for _, d := range p.Drugs {
		dt, ok := pop.DrugDB.Get(d.DrugTypeID)
		if !ok {
			continue
		}
		killing := d.Update(dt, day)
		for _, c := range p.Clones {
			c.UpdateFn = UpdateDrug
			c.Update(day, pop.Levels, 0, killing, 0)
		}
		if !d.Finished() {
			finished = append(finished, d)
		}
	}
	p.Drugs = finished
}

func (pop *Population) updateClones(p *Person, day int, r *Random) {
	if len(p.Clones) == 0 {
		return
	}
	immuneFactor := 0.0
	if p.Immune != nil {
		immuneFactor = p.Immune.LatestValue() * 0.1
	}
	live := p.Clones[:0:0]
	for _, c := range p.Clones {
		if c.UpdateFn != UpdateDrug { // drug step already advanced UpdateDrug clones above
			c.Update(day, pop.Levels, 0.2, 0, immuneFactor)
		}
		if !c.Cured() {
			live = append(live, c)
		}
	}
	p.Clones = live
}
