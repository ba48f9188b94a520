// Package io reads project files and writes schedule snapshots.
//
// # Project Files
//
// A project file describes resources and tasks. It is TOML or JSON; the
// format follows the file extension (.toml, .json) or is given explicitly.
//
//	id    = "office-move"
//	name  = "Office move"
//	start = 2025-01-01
//
//	[[resources]]
//	id        = "van"
//	type      = "vehicle"
//	capacity  = 1
//	exclusive = true
//
//	[[tasks]]
//	id       = "pack"
//	title    = "Pack boxes"
//	duration = 3
//
//	[[tasks]]
//	id       = "drive"
//	duration = 1
//	depends  = [{ task = "pack", type = "FS" }]
//	uses     = [{ resource = "van", quantity = 1 }]
//
// Dates may be TOML local dates or "YYYY-MM-DD" strings. Dependency types
// are "FS" or "SS" (default FS); anything else is rejected with
// INVALID_DEPENDENCY_TYPE. Tasks and resources without an id get a random
// UUID. A task's optional start fixes its start date.
//
// A task's status may be "in_progress" or "completed", with optional
// started and finished dates (a finished date alone implies completed).
// Statuses are applied after bookings, in dependency order; a missing date
// means today as given by the scheduler's clock. Pending and blocked are
// derived from the dependencies.
//
// [Load] builds the schedule through the public operations of package
// schedule, so a file that would create a cycle or overbook a resource
// fails with the same typed error as the equivalent API call.
//
// # Snapshots
//
// [NewDocument] turns a schedule snapshot into a [Document] with a fresh
// revision id. [WriteJSON] and [ReadJSON] encode and decode documents; the
// CLI stores them with package store and prints them without recomputing.
package io
