// Package schedule composes the dependency graph, the critical path
// calculator, the resource ledger and the task state machine into a
// project scheduler.
//
// # Atomic operations
//
// Every mutating method of [Scheduler] runs as one transaction:
//
//  1. checkpoint the task graph and the resource ledger
//  2. apply the mutation
//  3. recalculate the critical path and move resource bookings to the
//     tasks' new dates
//  4. re-derive Pending/Blocked status from dependency satisfaction
//
// If any step fails, both checkpoints are restored and the typed error from
// [github.com/matzehuels/stackplan/pkg/errors] is returned. A dependency that
// closes a cycle, a re-booking that no longer fits, or a refused status
// change leave no trace.
//
// # Bookings
//
// A resource binding always covers its task's span, from earliest start to
// earliest finish. When recalculation moves a task, its bookings are
// released and booked again over the new span. Bookings made with force
// stay forced; other bookings must fit the resource's capacity again.
//
// # Concurrency
//
// A Scheduler is not safe for concurrent use. Callers serialize mutations of
// one project, and of every project sharing a ledger, for example with one
// mutex per ledger.
package schedule
