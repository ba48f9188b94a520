// Package dag provides the dependency graph of a project's tasks.
//
// # Overview
//
// The graph is an arena of tasks addressed by [task.ID]. Dependencies are
// stored on their successor task as (type, predecessor ID) pairs, so the
// graph never holds task-to-task pointers; the graph keeps a reverse index
// (predecessor to successors) for the backward pass and for status
// propagation.
//
//	g := dag.New()
//	_ = g.AddTask(design)
//	_ = g.AddTask(build)
//	_ = g.AddEdge("build", "design", task.FinishToStart)
//	order, err := g.TopologicalOrder()
//
// # Ordering
//
// [TopologicalOrder] runs Kahn's algorithm. The queue is seeded with
// zero-in-degree tasks in the order the tasks are supplied, and newly ready
// successors are appended in that same order, so the result is fully
// determined by the input order. [Graph.Tasks] returns tasks in insertion
// order, which makes [Graph.TopologicalOrder] reproducible.
//
// If some tasks cannot be ordered the graph contains a cycle: the function
// returns a CYCLE_DETECTED error and no partial order.
//
// # Cycles
//
// AddEdge rejects self-dependencies but does not search for longer cycles.
// Cycles are detected when the graph is ordered, which is the first step of
// every recalculation; callers that add an edge and then fail to order the
// graph remove the edge again. Use [transform.FindCycle] to report the
// offending path.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must serialize
// all mutations of the same project's graph.
//
// [transform.FindCycle]: github.com/matzehuels/stackplan/pkg/dag/transform
package dag
