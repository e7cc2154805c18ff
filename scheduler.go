package simcore

import "fmt"

// Scheduler owns the event arena and the two day-bucketed queues described
// in spec section 4.1: a population queue for global events and an
// individual queue for events targeting a specific Person. Both are keyed
// by scheduled_day with FIFO tie-break within a day, matching the
// reproducibility requirement in spec section 5.
//
// Cancellation is lazy (spec section 4.1's rationale): cancel() flips
// executable=false and the event is skipped, then freed, on its scheduled
// dispatch pass. This keeps mass-cancellation on death or clinical
// transition O(1) per event instead of an O(N) scan of the queue.
type Scheduler struct {
	calendar   *Calendar
	totalTime  int
	nextID     EventID
	events     map[EventID]*Event
	population map[int][]EventID
	individual map[int][]EventID
}

// NewScheduler creates a Scheduler anchored to calendar, terminating once
// current_day exceeds totalTime (spec section 4.1's terminal condition).
func NewScheduler(calendar *Calendar, totalTime int) *Scheduler {
	return &Scheduler{
		calendar:   calendar,
		totalTime:  totalTime,
		events:     make(map[EventID]*Event),
		population: make(map[int][]EventID),
		individual: make(map[int][]EventID),
	}
}

// CurrentDay returns the scheduler's current day counter.
func (s *Scheduler) CurrentDay() int { return s.calendar.Day() }

// Finished reports whether current_day has passed totalTime.
func (s *Scheduler) Finished() bool { return s.calendar.Day() > s.totalTime }

// ScheduleIndividual files an event against a specific Person. Fails with
// an *InvariantViolation if scheduledDay precedes the current day (spec
// Invariant 2); per spec section 4.7 this is a programmer error and is
// not recoverable, so it panics rather than returning an error, matching
// the "panic/fail-fast" directive.
func (s *Scheduler) ScheduleIndividual(owner Dispatcher, ownerID uint64, kind EventKind, scheduledDay int, payload interface{}) *Event {
	s.assertNotPast(scheduledDay, ownerID, kind)
	ev := s.newEvent(kind, OwnerIndividual, ownerID, owner, scheduledDay, payload)
	s.individual[scheduledDay] = append(s.individual[scheduledDay], ev.ID)
	owner.addEventID(ev.ID)
	return ev
}

// SchedulePopulation files a global event, not tied to any one Person.
func (s *Scheduler) SchedulePopulation(owner Dispatcher, kind EventKind, scheduledDay int, payload interface{}) *Event {
	s.assertNotPast(scheduledDay, 0, kind)
	ev := s.newEvent(kind, OwnerPopulation, 0, owner, scheduledDay, payload)
	s.population[scheduledDay] = append(s.population[scheduledDay], ev.ID)
	if owner != nil {
		owner.addEventID(ev.ID)
	}
	return ev
}

func (s *Scheduler) assertNotPast(scheduledDay int, ownerID uint64, kind EventKind) {
	if scheduledDay < s.calendar.Day() {
		panic(&InvariantViolation{
			Day:      s.calendar.Day(),
			PersonID: ownerID,
			Kind:     kind.String(),
			Detail:   fmt.Sprintf("scheduled for day %d, which has already passed", scheduledDay),
		})
	}
}

func (s *Scheduler) newEvent(kind EventKind, ownerKind OwnerKind, ownerID uint64, owner Dispatcher, day int, payload interface{}) *Event {
	s.nextID++
	ev := &Event{
		ID:           s.nextID,
		Kind:         kind,
		OwnerKind:    ownerKind,
		OwnerID:      ownerID,
		Owner:        owner,
		ScheduledDay: day,
		executable:   true,
		Payload:      payload,
	}
	s.events[ev.ID] = ev
	return ev
}

// Cancel flips an event's executable flag off. Idempotent and O(1); the
// event stays in its queue bucket until its scheduled day, at which point
// dispatch skips it and frees it (spec section 4.1/5).
func (s *Scheduler) Cancel(id EventID) {
	if ev, ok := s.events[id]; ok {
		ev.executable = false
	}
}

// Event looks up a still-pending event by id. Returns nil if it has
// already been dispatched/freed.
func (s *Scheduler) Event(id EventID) *Event { return s.events[id] }

// Tick advances the day counter by one and drains every event scheduled
// for the new day, population events first, then individual events. Each
// due, non-cancelled event is passed to dispatch, which performs its
// side effect (see simulation.go's dispatch switch). Per spec section 5,
// events that dispatch schedules for the same day are appended and
// processed in the same pass, after already-pending events for that day.
func (s *Scheduler) Tick(dispatch func(*Event)) {
	s.calendar.advance()
	day := s.calendar.Day()
	s.drain(s.population, day, dispatch)
	s.drain(s.individual, day, dispatch)
}

func (s *Scheduler) drain(queue map[int][]EventID, day int, dispatch func(*Event)) {
	i := 0
	for {
		ids := queue[day]
		if i >= len(ids) {
			break
		}
		id := ids[i]
		i++
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		if ev.Owner != nil {
			ev.Owner.removeEventID(id)
		}
		delete(s.events, id)
		if ev.executable {
			dispatch(ev)
		}
	}
	delete(queue, day)
}
