// Package task defines the schedulable unit of a project and the status
// state machine that governs it.
//
// # Tasks
//
// A [Task] has a positive duration in days and derived dates: its
// EarliestFinish is always EarliestStart + Duration - 1. Dates are derived by
// the critical path calculator (package cpm) unless the start is anchored:
// fixed manually ([Task.ManualStart]), or set by starting the task.
//
// A task owns its outgoing [Dependency] edges. Each edge names the
// predecessor by [ID] only; the predecessor's lifetime is managed by the
// project, never by the edge.
//
// # Status
//
// Status moves through Pending, Blocked, InProgress and Completed:
//
//	Pending/Blocked --(automatic)--> Pending/Blocked
//	Pending/Blocked --(explicit)---> InProgress
//	InProgress      --(explicit)---> Completed
//
// Completed is terminal. [Transition] applies the date effects of explicit
// transitions; [Reconcile] re-derives Pending or Blocked from the status of
// a task's predecessors.
//
// # Concurrency
//
// Tasks are plain values without synchronization. Callers serialize access.
package task
