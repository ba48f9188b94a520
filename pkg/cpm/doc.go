// Package cpm computes schedules with the critical path method.
//
// [Calculate] runs a forward pass in topological order to derive each
// task's earliest start and finish, then a backward pass in reverse order
// to derive latest finish and slack. Dates are calendar days; a task of
// duration d starting on day s finishes on s + d - 1.
//
// The forward pass sets a task's earliest start to:
//
//   - the project start, if the task has no dependencies;
//   - otherwise the latest of predecessor finish + 1 (FS) and predecessor
//     start (SS) over all its dependencies.
//
// Tasks already InProgress or Completed keep their start, and Completed
// tasks also keep their finish and have zero slack. A manually fixed start
// is never lowered; it only moves later when a predecessor change pushes
// the dependency minimum past it.
//
// The backward pass sets latest finish to the project's earliest finish
// for tasks without successors, and otherwise to the earliest of successor
// start - 1 (FS) and successor start (SS). Slack is the non-negative gap
// between latest and earliest finish.
//
// Calculate is pure: it reads the graph and returns a [Result]. [Apply]
// writes a result back onto the tasks. On a dependency cycle Calculate
// returns CYCLE_DETECTED and no result, so nothing is applied.
package cpm
