// Package calendar provides whole-day dates and the clock abstraction used by
// the scheduling engine.
//
// Schedules are computed in calendar days: a task of duration 3 starting on
// 2025-01-01 finishes on 2025-01-03. [Date] carries no time of day and no
// location, so date arithmetic is exact integer arithmetic on days.
//
// The engine never reads the system clock. Operations that need "today"
// (starting or completing a task) take it from a [Clock], which keeps
// recalculation deterministic in tests.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the textual form of a Date (ISO 8601 calendar date).
const Layout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day. The zero value is an unset date; use IsZero to
// test for it. Dates are comparable with == and usable as map keys.
type Date struct {
	days  int64 // days since 1970-01-01
	valid bool
}

// New returns the date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date{days: floorDiv(u.Unix(), secondsPerDay), valid: true}
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return !d.valid }

// Time returns midnight UTC of d. The zero Date maps to the zero time.Time.
func (d Date) Time() time.Time {
	if !d.valid {
		return time.Time{}
	}
	return time.Unix(d.days*secondsPerDay, 0).UTC()
}

// AddDays returns d shifted by n days. Shifting an unset date yields an unset date.
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return Date{days: d.days + int64(n), valid: true}
}

// Sub returns the number of days from o to d (d - o).
func (d Date) Sub(o Date) int { return int(d.days - o.days) }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.days < o.days }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.days > o.days }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.days < o.days:
		return -1
	case d.days > o.days:
		return 1
	default:
		return 0
	}
}

// String returns the date in YYYY-MM-DD form, or "unset" for the zero Date.
func (d Date) String() string {
	if !d.valid {
		return "unset"
	}
	return d.Time().Format(Layout)
}

// MarshalText implements encoding.TextMarshaler. The zero Date marshals to "".
func (d Date) MarshalText() ([]byte, error) {
	if !d.valid {
		return []byte{}, nil
	}
	return []byte(d.Time().Format(Layout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "" yields the zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Max returns the latest of the given dates.
func Max(first Date, rest ...Date) Date {
	m := first
	for _, d := range rest {
		if d.After(m) {
			m = d
		}
	}
	return m
}

// Min returns the earliest of the given dates.
func Min(first Date, rest ...Date) Date {
	m := first
	for _, d := range rest {
		if d.Before(m) {
			m = d
		}
	}
	return m
}

// Overlaps reports whether the inclusive spans [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
