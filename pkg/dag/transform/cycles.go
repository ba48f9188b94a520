package transform

import (
	"slices"

	"github.com/matzehuels/stackplan/pkg/dag"
	"github.com/matzehuels/stackplan/pkg/task"
)

// FindCycle returns a dependency cycle as a path that starts and ends with
// the same task, each task depending on the next one. It returns nil if the
// graph is acyclic. Tasks are explored in insertion order, so the reported
// cycle is deterministic.
func FindCycle(g *dag.Graph) []task.ID {
	const (
		white = iota
		gray
		black
	)

	color := make(map[task.ID]int)
	parent := make(map[task.ID]task.ID)

	var cycle []task.ID
	var dfs func(id task.ID) bool
	dfs = func(id task.ID) bool {
		color[id] = gray
		for _, pred := range g.Predecessors(id) {
			if _, ok := g.Task(pred); !ok {
				continue
			}
			switch color[pred] {
			case white:
				parent[pred] = id
				if dfs(pred) {
					return true
				}
			case gray:
				cycle = []task.ID{pred}
				for cur := id; cur != pred; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, pred)
				slices.Reverse(cycle)
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, t := range g.Tasks() {
		if color[t.ID] == white && dfs(t.ID) {
			return cycle
		}
	}
	return nil
}
