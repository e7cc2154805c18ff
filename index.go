package simcore

// PersonIndex is one of the multi-dimensional views maintained over the
// Person arena (spec section 4.4). Every index is notified of relevant
// attribute changes via change(); each performs an O(1) remove-and-push-back
// using the slot offset the person carries for that index, never a scan.
type PersonIndex interface {
	Add(p *Person)
	Remove(p *Person)
	// Change reacts to a mutation of one of {location, state, age_class,
	// moving_level} on p. old is only used by indices keyed on that field;
	// others ignore it.
	Change(p *Person, field IndexField, old int)
}

// IndexField names the Person attribute that changed, so an index that
// doesn't partition on that field can ignore the notification cheaply.
type IndexField uint8

const (
	FieldLocation IndexField = iota
	FieldState
	FieldAgeClass
	FieldMovingLevel
)

// PersonIndexAll is the dense, unordered vector of every living Person.
type PersonIndexAll struct {
	people []*Person
}

func NewPersonIndexAll() *PersonIndexAll { return &PersonIndexAll{} }

func (idx *PersonIndexAll) Add(p *Person) {
	p.allIndexSlot = len(idx.people)
	idx.people = append(idx.people, p)
}

func (idx *PersonIndexAll) Remove(p *Person) {
	slot := p.allIndexSlot
	if slot < 0 || slot >= len(idx.people) {
		return
	}
	last := len(idx.people) - 1
	idx.people[slot] = idx.people[last]
	idx.people[slot].allIndexSlot = slot
	idx.people = idx.people[:last]
	p.allIndexSlot = -1
}

// Change is a no-op for PersonIndexAll: membership never depends on
// location/state/age_class/moving_level.
func (idx *PersonIndexAll) Change(p *Person, field IndexField, old int) {}

// All returns the live backing slice. Callers must not retain it across a
// mutating operation (spec section 5's stale-reference rule).
func (idx *PersonIndexAll) All() []*Person { return idx.people }

// locStateAgeKey groups the three axes PersonIndexByLocationStateAgeClass
// partitions on.
type locStateAgeKey struct {
	location uint32
	state    HostState
	ageClass uint8
}

// PersonIndexByLocationStateAgeClass is the authoritative spatial/demographic
// partition: vPerson[location][state][age_class] = []Person (spec 4.4).
type PersonIndexByLocationStateAgeClass struct {
	buckets map[locStateAgeKey][]*Person
}

func NewPersonIndexByLocationStateAgeClass() *PersonIndexByLocationStateAgeClass {
	return &PersonIndexByLocationStateAgeClass{buckets: make(map[locStateAgeKey][]*Person)}
}

func (idx *PersonIndexByLocationStateAgeClass) key(p *Person) locStateAgeKey {
	return locStateAgeKey{p.Location, p.HostState, p.AgeClassIndex}
}

func (idx *PersonIndexByLocationStateAgeClass) Add(p *Person) {
	k := idx.key(p)
	b := idx.buckets[k]
	p.locStateAgeSlot = len(b)
	idx.buckets[k] = append(b, p)
}

func (idx *PersonIndexByLocationStateAgeClass) Remove(p *Person) {
	k := idx.key(p)
	idx.removeFrom(k, p)
}

func (idx *PersonIndexByLocationStateAgeClass) removeFrom(k locStateAgeKey, p *Person) {
	b := idx.buckets[k]
	slot := p.locStateAgeSlot
	if slot < 0 || slot >= len(b) {
		return
	}
	last := len(b) - 1
	b[slot] = b[last]
	b[slot].locStateAgeSlot = slot
	b = b[:last]
	if len(b) == 0 {
		delete(idx.buckets, k)
	} else {
		idx.buckets[k] = b
	}
	p.locStateAgeSlot = -1
}

// Change re-buckets p when location, state or age_class changes. old is the
// previous value of the field named, cast to int (HostState/uint32/uint8 all
// fit).
func (idx *PersonIndexByLocationStateAgeClass) Change(p *Person, field IndexField, old int) {
	switch field {
	case FieldLocation:
		oldKey := locStateAgeKey{uint32(old), p.HostState, p.AgeClassIndex}
		idx.removeFrom(oldKey, p)
		idx.Add(p)
	case FieldState:
		oldKey := locStateAgeKey{p.Location, HostState(old), p.AgeClassIndex}
		idx.removeFrom(oldKey, p)
		idx.Add(p)
	case FieldAgeClass:
		oldKey := locStateAgeKey{p.Location, p.HostState, uint8(old)}
		idx.removeFrom(oldKey, p)
		idx.Add(p)
	}
}

// Bucket returns the (possibly nil) slice of people at a given
// location/state/age_class combination.
func (idx *PersonIndexByLocationStateAgeClass) Bucket(location uint32, state HostState, ageClass uint8) []*Person {
	return idx.buckets[locStateAgeKey{location, state, ageClass}]
}

// locMovingKey groups the two axes PersonIndexByLocationMovingLevel
// partitions on.
type locMovingKey struct {
	location    uint32
	movingLevel uint16
}

// PersonIndexByLocationMovingLevel backs the movement step: vPerson[location][moving_level]
// (spec 4.4).
type PersonIndexByLocationMovingLevel struct {
	buckets map[locMovingKey][]*Person
}

func NewPersonIndexByLocationMovingLevel() *PersonIndexByLocationMovingLevel {
	return &PersonIndexByLocationMovingLevel{buckets: make(map[locMovingKey][]*Person)}
}

func (idx *PersonIndexByLocationMovingLevel) key(p *Person) locMovingKey {
	return locMovingKey{p.Location, p.MovingLevelIndex}
}

func (idx *PersonIndexByLocationMovingLevel) Add(p *Person) {
	k := idx.key(p)
	b := idx.buckets[k]
	p.locMovingSlot = len(b)
	idx.buckets[k] = append(b, p)
}

func (idx *PersonIndexByLocationMovingLevel) Remove(p *Person) {
	idx.removeFrom(idx.key(p), p)
}

func (idx *PersonIndexByLocationMovingLevel) removeFrom(k locMovingKey, p *Person) {
	b := idx.buckets[k]
	slot := p.locMovingSlot
	if slot < 0 || slot >= len(b) {
		return
	}
	last := len(b) - 1
	b[slot] = b[last]
	b[slot].locMovingSlot = slot
	b = b[:last]
	if len(b) == 0 {
		delete(idx.buckets, k)
	} else {
		idx.buckets[k] = b
	}
	p.locMovingSlot = -1
}

func (idx *PersonIndexByLocationMovingLevel) Change(p *Person, field IndexField, old int) {
	switch field {
	case FieldLocation:
		idx.removeFrom(locMovingKey{uint32(old), p.MovingLevelIndex}, p)
		idx.Add(p)
	case FieldMovingLevel:
		idx.removeFrom(locMovingKey{p.Location, uint16(old)}, p)
		idx.Add(p)
	}
}

// Bucket returns the (possibly nil) slice of people at a given
// location/moving_level combination.
func (idx *PersonIndexByLocationMovingLevel) Bucket(location uint32, movingLevel uint16) []*Person {
	return idx.buckets[locMovingKey{location, movingLevel}]
}

// IndexSet bundles the three registered indices and is the single entry
// point Population mutation code notifies, matching spec 4.4's "every
// registered index is notified" mandate.
type IndexSet struct {
	All               *PersonIndexAll
	ByLocationStateAge *PersonIndexByLocationStateAgeClass
	ByLocationMoving  *PersonIndexByLocationMovingLevel
}

func NewIndexSet() *IndexSet {
	return &IndexSet{
		All:                NewPersonIndexAll(),
		ByLocationStateAge: NewPersonIndexByLocationStateAgeClass(),
		ByLocationMoving:   NewPersonIndexByLocationMovingLevel(),
	}
}

// AddPerson registers a newly created/arrived person in every index.
func (s *IndexSet) AddPerson(p *Person) {
	s.All.Add(p)
	s.ByLocationStateAge.Add(p)
	s.ByLocationMoving.Add(p)
}

// RemovePerson drops a person (death, or departure handled as remove+re-add
// under the new location) from every index.
func (s *IndexSet) RemovePerson(p *Person) {
	s.All.Remove(p)
	s.ByLocationStateAge.Remove(p)
	s.ByLocationMoving.Remove(p)
}

// NotifyChange fans a single field mutation out to every index that cares.
// Direct mutation of location/state/age_class/moving_level without calling
// this violates spec Invariant 5.
func (s *IndexSet) NotifyChange(p *Person, field IndexField, old int) {
	s.All.Change(p, field, old)
	s.ByLocationStateAge.Change(p, field, old)
	s.ByLocationMoving.Change(p, field, old)
}
