// Package ledger tracks resource capacity and date-ranged usage.
//
// # Overview
//
// A [Resource] has a capacity: the maximum quantity that may be in use on
// any single calendar day. Every booking is recorded as a [UsageRange]
// covering an inclusive span of days. A request fits when, for every day of
// its span, the quantities of all bookings covering that day plus the
// request stay within capacity.
//
//	l := ledger.New()
//	_ = l.AddResource(ledger.Resource{ID: "crane", Type: "equipment", Capacity: 2})
//	ok, _ := l.CheckAvailability("crane", start, end, 1)
//	_, err := l.Assign("crane", "tower", "pour-foundation", start, end, 1, false)
//
// # Forced bookings
//
// Assign with forced=true skips the capacity check. Forced bookings are an
// explicit override (manual rescheduling); they are still recorded, so later
// checks see the real load, and they are flagged in [UsageRange.Forced].
//
// # Usage counter
//
// Each resource keeps an active-usage counter incremented per booking and
// decremented per released booking. A release that matches no booking, or
// that would drive the counter below zero, fails with NEGATIVE_USAGE_COUNT.
// That error means Assign and Release calls were not paired: it is a caller
// bug, not a user input problem.
//
// # Exclusive resources
//
// A resource can be bound to a single project with
// [Ledger.AssociateWithProject]. The binding is permanent.
//
// # Concurrency
//
// Ledger instances are not safe for concurrent use. Resources shared by
// several projects must be serialized by the caller across all of them,
// since capacity checks aggregate every booking on the resource.
package ledger
