package simcore

// HostState is the host's epidemiological state, spec section 3.
type HostState uint8

const (
	Susceptible HostState = iota
	Exposed
	Asymptomatic
	Clinical
	Dead
)

func (s HostState) String() string {
	switch s {
	case Susceptible:
		return "SUSCEPTIBLE"
	case Exposed:
		return "EXPOSED"
	case Asymptomatic:
		return "ASYMPTOMATIC"
	case Clinical:
		return "CLINICAL"
	case Dead:
		return "DEAD"
	}
	return "UNKNOWN"
}

// Person is the fundamental entity of the simulation (spec section 3).
// Collections are owned (clones, drugs, one immune component, pending
// events); index slots are back-offsets into each PersonIndex the
// person currently participates in, kept in sync by PersonIndex.change
// so removal from any index is O(1) (spec section 4.4).
type Person struct {
	ID                       uint64
	Location                 uint32
	ResidenceLocation        uint32
	HostState                HostState
	AgeDays                  uint32
	AgeClassIndex            uint8
	BitingLevelIndex         uint16
	MovingLevelIndex         uint16
	InnateRelativeBitingRate float64

	Clones []*ParasiteClone
	Drugs  []*DrugInBlood
	Immune ImmuneComponent

	ClinicalEpisodeCount int
	TreatmentCount       int
	TreatmentFailures    int
	CurrentTherapyID     int
	currentTherapySet    bool

	eventIDs []EventID // the Dispatcher's own event list (spec 4.2)

	// index back-offsets; -1 means "not currently a member of this index"
	allIndexSlot        int
	locStateAgeSlot     int
	locMovingSlot       int
}

// NewPerson creates a Person at the given location, age and susceptible
// state, with no parasites, drugs or pending events. immune must be
// supplied by the caller (Infant or NonInfant variant, per spec 3) since
// the variant depends on age at creation.
func NewPerson(id uint64, location uint32, ageDays uint32, immune ImmuneComponent) *Person {
	return &Person{
		ID:                id,
		Location:          location,
		ResidenceLocation: location,
		HostState:         Susceptible,
		AgeDays:           ageDays,
		Immune:            immune,
		allIndexSlot:      -1,
		locStateAgeSlot:   -1,
		locMovingSlot:     -1,
	}
}

// DispatcherID satisfies Dispatcher.
func (p *Person) DispatcherID() uint64 { return p.ID }

func (p *Person) addEventID(id EventID) {
	p.eventIDs = append(p.eventIDs, id)
}

func (p *Person) removeEventID(id EventID) {
	for i, existing := range p.eventIDs {
		if existing == id {
			p.eventIDs[i] = p.eventIDs[len(p.eventIDs)-1]
			p.eventIDs = p.eventIDs[:len(p.eventIDs)-1]
			return
		}
	}
}

// EventIDs returns a snapshot of the person's pending event handles.
// Callers that need to cancel siblings while iterating (e.g.
// ProgressToClinicalEvent cancelling other progress-to-clinical events)
// must snapshot first per spec section 5's "no stale references across a
// mutating event" rule; this copy is exactly that snapshot.
func (p *Person) EventIDs() []EventID {
	out := make([]EventID, len(p.eventIDs))
	copy(out, p.eventIDs)
	return out
}

// CancelAllEventsExcept marks every pending event other than except as
// not-executable. Used on death (spec 4.3): a dead host has nothing left to
// reschedule, so every pending event - Birthday, UpdateEveryKDays, clinical
// follow-ups - is cancelled at once.
func (p *Person) CancelAllEventsExcept(sched *Scheduler, except EventID) {
	for _, id := range p.EventIDs() {
		if id == except {
			continue
		}
		sched.Cancel(id)
	}
}

// CancelEventsOfKindExcept marks pending events of the given kind other than
// except as not-executable, leaving every other pending event (Birthday,
// UpdateEveryKDays, and any event of a different kind) untouched. This is
// spec 4.2's cancel_all_other_progress_to_clinical_events_except(self): the
// ASYMPTOMATIC->CLINICAL transition only needs to silence sibling
// ProgressToClinical events for clones that lost the race, not the host's
// whole event list.
func (p *Person) CancelEventsOfKindExcept(sched *Scheduler, kind EventKind, except EventID) {
	for _, id := range p.EventIDs() {
		if id == except {
			continue
		}
		if ev := sched.Event(id); ev != nil && ev.Kind == kind {
			sched.Cancel(id)
		}
	}
}

// AgeYears returns the age in fractional years (AgeDays/365), the unit most age-banded
// configuration (therapy age boundaries, age-class boundaries) is
// expressed in.
func (p *Person) AgeYears() float64 {
	return float64(p.AgeDays) / 365.0
}

// ClearedAllClones reports whether the host carries no live parasite
// clones, the trigger for EXPOSED/ASYMPTOMATIC -> SUSCEPTIBLE in the
// daily update (spec section 4.5).
func (p *Person) ClearedAllClones() bool { return len(p.Clones) == 0 }

// AddClone appends a newly-acquired parasite clone (from MoveParasiteToBlood
// or from in-host mutation) to the host's owned collection.
func (p *Person) AddClone(c *ParasiteClone) { p.Clones = append(p.Clones, c) }

// RemoveClone drops a clone by its genotype id the first time it is
// found. A clone referenced by an in-flight event that has since been
// removed here makes that event's later execution a silent no-op per
// spec Invariant 4 — callers must re-check clone presence at execution
// time rather than assuming a handle is still valid.
func (p *Person) RemoveClone(genotypeID uint64) {
	for i, c := range p.Clones {
		if c.GenotypeID == genotypeID {
			p.Clones = append(p.Clones[:i], p.Clones[i+1:]...)
			return
		}
	}
}

// HasClone reports whether the host still carries a clone of the given
// genotype id, used by event handlers to detect the silent-no-op case.
func (p *Person) HasClone(genotypeID uint64) bool {
	for _, c := range p.Clones {
		if c.GenotypeID == genotypeID {
			return true
		}
	}
	return false
}

// AddDrug appends a newly-dosed drug to the host's blood.
func (p *Person) AddDrug(d *DrugInBlood) { p.Drugs = append(p.Drugs, d) }

// RemoveDrug drops a fully-decayed/finished drug by its drug type id.
func (p *Person) RemoveDrug(drugTypeID int) {
	for i, d := range p.Drugs {
		if d.DrugTypeID == drugTypeID {
			p.Drugs = append(p.Drugs[:i], p.Drugs[i+1:]...)
			return
		}
	}
}

// clearAll wipes clones, drugs and pending events; used on death so a
// DEAD Person holds nothing per spec Invariant 3.
func (p *Person) clearAll() {
	p.Clones = nil
	p.Drugs = nil
	p.eventIDs = nil
}
