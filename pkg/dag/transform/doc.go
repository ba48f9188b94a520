// Package transform provides analyses over a task dependency graph.
//
// # Cycles
//
// [FindCycle] returns one dependency cycle as a path of task IDs, using
// depth-first search with white/gray/black coloring. The scheduling engine
// detects cycles through a failed topological sort; FindCycle is used to
// tell the user which tasks form the loop.
//
// # Redundant Dependencies
//
// [RedundantDependencies] reports dependencies already implied by another
// path in the graph. If B depends on A (FS), C depends on B (FS) and C also
// depends on A (FS), the last edge adds no constraint. The analysis honors
// dependency types:
//
//   - An SS dependency u on v is implied by any other path from v to u,
//     because every dependency keeps the successor's start at or after the
//     predecessor's start.
//   - An FS dependency u on v is implied only by a path whose first hop out
//     of v is FS: that hop pushes the next start past v's finish, and every
//     later hop preserves it.
//
// Redundant edges are reported, never removed.
package transform
