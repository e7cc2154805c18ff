package simcore

import "sort"

// Strategy selects which Therapy a CLINICAL, to-be-treated Person receives
// (spec 4.6). Therapies are immutable once loaded. RotateStrategy and
// ChangeStrategy do not modify a Strategy: their handlers switch which
// loaded Strategy is active via StrategyDatabase.SetActive, and a Person's
// CurrentTherapyID from before a switch is left unchanged.
type Strategy interface {
	ID() int
	// GetTherapy returns the Therapy this strategy currently prescribes for
	// p. day is the current simulation day; none of the strategies in this
	// file uses it to choose a therapy.
	GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy
}

// SFTStrategy always prescribes the same therapy id.
type SFTStrategy struct {
	StrategyID int
	TherapyID  int
}

func (s *SFTStrategy) ID() int { return s.StrategyID }

func (s *SFTStrategy) GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy {
	t, _ := therapies.Get(s.TherapyID)
	return t
}

// CyclingStrategy prescribes the therapy id at its active index in a fixed
// list. The index moves only when Advance is called, never on a GetTherapy
// call. No event handler in this package calls Advance or DueForSwitch, so
// during a run the strategy stays on its first therapy id.
type CyclingStrategy struct {
	StrategyID  int
	TherapyIDs  []int
	PeriodDays  int
	activeIndex int
	lastSwitch  int
}

// NewCyclingStrategy creates a Cycling strategy starting on the first
// therapy id in the list.
func NewCyclingStrategy(id int, therapyIDs []int, periodDays int) *CyclingStrategy {
	return &CyclingStrategy{StrategyID: id, TherapyIDs: therapyIDs, PeriodDays: periodDays}
}

func (s *CyclingStrategy) ID() int { return s.StrategyID }

func (s *CyclingStrategy) GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy {
	t, _ := therapies.Get(s.TherapyIDs[s.activeIndex])
	return t
}

// Advance moves to the next therapy id in the list (wrapping around) and
// records day as the last switch.
func (s *CyclingStrategy) Advance(day int) {
	s.activeIndex = (s.activeIndex + 1) % len(s.TherapyIDs)
	s.lastSwitch = day
}

// DueForSwitch reports whether PeriodDays have elapsed since the last
// switch recorded by Advance.
func (s *CyclingStrategy) DueForSwitch(day int) bool {
	return day-s.lastSwitch >= s.PeriodDays
}

// MFTStrategy picks a therapy id by categorical draw over fixed weights
// (spec 4.6's "multi first-line").
type MFTStrategy struct {
	StrategyID int
	TherapyIDs []int
	Weights    []float64
}

func (s *MFTStrategy) ID() int { return s.StrategyID }

func (s *MFTStrategy) GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy {
	// GetTherapy makes no random draw and always returns the first therapy
	// id's Therapy. The weighted pick is PickTherapyID, which simulation.go's
	// treatment step calls for an active MFTStrategy instead of GetTherapy,
	// recording the result on the person as CurrentTherapyID.
	t, _ := therapies.Get(s.TherapyIDs[0])
	return t
}

// PickTherapyID draws a therapy id from the categorical weights, the
// entry point simulation.go's treatment-decision step calls instead of
// GetTherapy so the draw consumes the shared Random stream exactly once.
func (s *MFTStrategy) PickTherapyID(r *Random) int {
	idx := r.Categorical(s.Weights)
	return s.TherapyIDs[idx]
}

// MFTAgeBasedStrategy selects a therapy by age band (spec 4.6): therapy
// list plus a strictly-increasing boundary list of length len(TherapyIDs)-1.
// Boundary ties resolve strict-greater per spec section 9's REDESIGN FLAG:
// therapy index = count of boundaries b with b <= age.
type MFTAgeBasedStrategy struct {
	StrategyID int
	TherapyIDs []int
	Boundaries []float64 // ascending, length len(TherapyIDs)-1
}

func (s *MFTAgeBasedStrategy) ID() int { return s.StrategyID }

// TherapyIndexForAge runs the binary search spec 4.6 calls for: the count
// of boundaries <= age, capped at the last therapy index. sort.Search finds
// the first boundary strictly greater than age; everything before it is
// "<= age" by the ascending-boundaries precondition.
func (s *MFTAgeBasedStrategy) TherapyIndexForAge(age float64) int {
	idx := sort.Search(len(s.Boundaries), func(i int) bool { return s.Boundaries[i] > age })
	if idx >= len(s.TherapyIDs) {
		return len(s.TherapyIDs) - 1
	}
	return idx
}

func (s *MFTAgeBasedStrategy) GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy {
	idx := s.TherapyIndexForAge(p.AgeYears())
	t, _ := therapies.Get(s.TherapyIDs[idx])
	return t
}

// NestedMFTStrategy composes sub-strategies per spatial partition (spec
// 4.6's Nested-MFT / MFT-multi-location / District-MFT family): each
// partition key (location or district id, depending on Partitioner) maps to
// its own Strategy, with Default used for any key with no explicit entry.
type NestedMFTStrategy struct {
	StrategyID  int
	Partitioner func(p *Person) int
	ByPartition map[int]Strategy
	Default     Strategy
}

func (s *NestedMFTStrategy) ID() int { return s.StrategyID }

func (s *NestedMFTStrategy) GetTherapy(p *Person, day int, therapies *TherapyDatabase) *Therapy {
	key := s.Partitioner(p)
	if sub, ok := s.ByPartition[key]; ok {
		return sub.GetTherapy(p, day, therapies)
	}
	if s.Default != nil {
		return s.Default.GetTherapy(p, day, therapies)
	}
	return nil
}

// ByLocationPartitioner and ByDistrictPartitioner are the two partition
// functions spec 4.6 names (MFT-multi-location and District-MFT). district
// is supplied by SpatialData.DistrictLookup at config-build time
// (config_loader.go), closed over here so NestedMFTStrategy itself stays
// agnostic to spatial lookups.
func ByLocationPartitioner(p *Person) int { return int(p.Location) }

func ByDistrictPartitioner(districtLookup func(location uint32) int) func(*Person) int {
	return func(p *Person) int { return districtLookup(p.Location) }
}

// StrategyDatabase is the loaded strategy_db config section plus the
// currently active strategy (spec section 6's strategy_db/initial_strategy_id).
type StrategyDatabase struct {
	strategies map[int]Strategy
	activeID   int
}

func NewStrategyDatabase() *StrategyDatabase {
	return &StrategyDatabase{strategies: make(map[int]Strategy)}
}

func (db *StrategyDatabase) Add(s Strategy) { db.strategies[s.ID()] = s }

func (db *StrategyDatabase) Get(id int) (Strategy, bool) {
	s, ok := db.strategies[id]
	return s, ok
}

// SetActive switches the globally-active strategy id, the effect of both
// the initial_strategy_id config key and the EventChangeStrategy/
// EventRotateStrategy handlers.
func (db *StrategyDatabase) SetActive(id int) { db.activeID = id }

// Active returns the currently active strategy, or nil if none has been
// set (a ConfigError at load time per spec 4.7).
func (db *StrategyDatabase) Active() Strategy {
	s, _ := db.strategies[db.activeID]
	return s
}
