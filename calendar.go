package simcore

import "time"

// Calendar projects the simulation's integer day counter onto a real
// calendar date, the way a report needs "model day 743 is 2003-02-11"
// without the scheduler itself knowing about time.Time. Grounded on the
// teacher's simulation.go generation counter, generalized per spec
// section 4.1 to track a true calendar start date.
type Calendar struct {
	startDate time.Time
	day       int // current_day; monotonically non-decreasing (Invariant 6)
}

// NewCalendar creates a Calendar rooted at startDate, day 0.
func NewCalendar(startDate time.Time) *Calendar {
	return &Calendar{startDate: startDate}
}

// Day returns the current integer day counter.
func (c *Calendar) Day() int { return c.day }

// Date projects the current day onto the calendar.
func (c *Calendar) Date() time.Time { return c.startDate.AddDate(0, 0, c.day) }

// DateAt projects an arbitrary day offset onto the calendar.
func (c *Calendar) DateAt(day int) time.Time { return c.startDate.AddDate(0, 0, day) }

// advance moves the day counter forward by one. Only the Scheduler calls
// this, from tick().
func (c *Calendar) advance() { c.day++ }
