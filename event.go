package simcore

// EventID is a stable handle into the Scheduler's event arena. Per the
// spec's Design Notes, cross-references that the original C++ expressed as
// raw pointers (Event -> Dispatcher, Dispatcher -> Event) are expressed
// here as Ids into arenas, not pointers, so cancellation and removal never
// dangle.
type EventID uint64

// EventKind tags what an Event does. Virtual dispatch on an Event base
// class (as the C++ original has one) is replaced by this tag plus a
// single dispatch switch in Simulation.dispatch (simulation.go), per the spec's Design
// Notes: "replace with a tagged variant ... plus a single dispatch
// function."
type EventKind uint8

const (
	EventBirthday EventKind = iota
	EventUpdateEveryKDays
	EventProgressToClinical
	EventEndClinicalByNoTreatment
	EventEndClinicalDueToDrugResistance
	EventEndClinical
	EventMoveParasiteToBlood
	EventMatureGametocyte
	EventTestTreatmentFailure
	EventReportTreatmentFailureDeath
	EventChangeStrategy
	EventImportationPeriodically
	EventDistrictImportationDaily
	EventIntroduceMutant
	EventIntroduceMutantRaster
	EventIntroduceAQMutant
	EventIntroduceLumefantrineMutant
	EventIntroducePlas2Copy
	EventSingleRoundMDA
	EventTurnOnMutation
	EventTurnOffMutation
	EventAnnualBetaUpdate
	EventAnnualCoverageUpdate
	EventChangeCirculationPercent
	EventUpdateBetaRaster
	EventRotateStrategy
	EventChangeTreatmentCoverage
	EventModifyNestedMFT
)

// String names a kind for logging; keeps log lines readable without a
// dependency on reflection.
func (k EventKind) String() string {
	switch k {
	case EventBirthday:
		return "Birthday"
	case EventUpdateEveryKDays:
		return "UpdateEveryKDays"
	case EventProgressToClinical:
		return "ProgressToClinical"
	case EventEndClinicalByNoTreatment:
		return "EndClinicalByNoTreatment"
	case EventEndClinicalDueToDrugResistance:
		return "EndClinicalDueToDrugResistance"
	case EventEndClinical:
		return "EndClinical"
	case EventMoveParasiteToBlood:
		return "MoveParasiteToBlood"
	case EventMatureGametocyte:
		return "MatureGametocyte"
	case EventTestTreatmentFailure:
		return "TestTreatmentFailure"
	case EventReportTreatmentFailureDeath:
		return "ReportTreatmentFailureDeath"
	case EventChangeStrategy:
		return "ChangeStrategy"
	case EventImportationPeriodically:
		return "ImportationPeriodically"
	case EventDistrictImportationDaily:
		return "DistrictImportationDaily"
	case EventIntroduceMutant:
		return "IntroduceMutant"
	case EventIntroduceMutantRaster:
		return "IntroduceMutantRaster"
	case EventIntroduceAQMutant:
		return "IntroduceAQMutant"
	case EventIntroduceLumefantrineMutant:
		return "IntroduceLumefantrineMutant"
	case EventIntroducePlas2Copy:
		return "IntroducePlas2Copy"
	case EventSingleRoundMDA:
		return "SingleRoundMDA"
	case EventTurnOnMutation:
		return "TurnOnMutation"
	case EventTurnOffMutation:
		return "TurnOffMutation"
	case EventAnnualBetaUpdate:
		return "AnnualBetaUpdate"
	case EventAnnualCoverageUpdate:
		return "AnnualCoverageUpdate"
	case EventChangeCirculationPercent:
		return "ChangeCirculationPercent"
	case EventUpdateBetaRaster:
		return "UpdateBetaRaster"
	case EventRotateStrategy:
		return "RotateStrategy"
	case EventChangeTreatmentCoverage:
		return "ChangeTreatmentCoverage"
	case EventModifyNestedMFT:
		return "ModifyNestedMFT"
	}
	return "Unknown"
}

// OwnerKind tells the scheduler which queue an Event was filed under.
type OwnerKind uint8

const (
	OwnerIndividual OwnerKind = iota
	OwnerPopulation
)

// Dispatcher is the entity whose event list an Event lives on: a Person
// for individual events, the Population for population-wide ones. Per
// spec section 4.2, the Dispatcher keeps the event's handle locally so
// cancel-all-except and cancel-all-of-kind are local operations, not
// scheduler-wide scans.
type Dispatcher interface {
	DispatcherID() uint64
	addEventID(id EventID)
	removeEventID(id EventID)
}

// Event is the tagged variant described above. Payload carries
// kind-specific data (e.g. *progressToClinicalPayload) asserted out by the
// dispatch switch in Simulation.dispatch.
type Event struct {
	ID           EventID
	Kind         EventKind
	OwnerKind    OwnerKind
	OwnerID      uint64      // person id for OwnerIndividual; unused for OwnerPopulation
	Owner        Dispatcher  // the Person or Population this event is filed under
	ScheduledDay int
	executable   bool
	Payload      interface{}
}

// Executable reports whether this event will run on dispatch, or has been
// cancelled (silently skipped and then dropped from the queue).
func (e *Event) Executable() bool { return e.executable }
