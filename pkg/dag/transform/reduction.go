package transform

import (
	"github.com/matzehuels/stackplan/pkg/dag"
	"github.com/matzehuels/stackplan/pkg/task"
)

// RedundantDependencies returns the dependencies whose constraint is already
// implied by another path, in the order of [dag.Graph.Edges].
//
// Time complexity is O(E·(V+E)): one reachability search per edge.
func RedundantDependencies(g *dag.Graph) []dag.Edge {
	var out []dag.Edge
	for _, e := range g.Edges() {
		if implied(g, e) {
			out = append(out, e)
		}
	}
	return out
}

// implied reports whether e.Successor is reachable from e.Predecessor
// without using e itself, with a first hop strong enough for e.Type.
func implied(g *dag.Graph, e dag.Edge) bool {
	for _, next := range g.Successors(e.Predecessor) {
		if next == e.Successor {
			continue
		}
		if e.Type == task.FinishToStart {
			t, ok := g.Task(next)
			if !ok {
				continue
			}
			if d, _ := t.Dependency(e.Predecessor); d.Type != task.FinishToStart {
				continue
			}
		}
		if reaches(g, next, e.Successor) {
			return true
		}
	}
	return false
}

func reaches(g *dag.Graph, from, to task.ID) bool {
	seen := map[task.ID]bool{from: true}
	stack := []task.ID{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		for _, s := range g.Successors(n) {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return false
}
