package calendar

import "time"

// Clock supplies the current calendar day.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in Location (time.Local if nil).
type SystemClock struct {
	Location *time.Location
}

// Today returns the current day in the clock's location.
func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// FixedClock always returns the same day.
type FixedClock Date

// Today returns the fixed day.
func (c FixedClock) Today() Date { return Date(c) }

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() Date

// Today calls f.
func (f ClockFunc) Today() Date { return f() }
