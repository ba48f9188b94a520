package dag

import (
	"slices"

	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/task"
)

// Edge is a dependency seen from the graph: Successor depends on Predecessor.
type Edge struct {
	Successor   task.ID
	Predecessor task.ID
	Type        task.DependencyType
}

// Graph is an arena of tasks and the typed dependencies between them.
//
// The zero value is not usable - use New to create a valid Graph instance.
type Graph struct {
	tasks      map[task.ID]*task.Task
	order      []task.ID
	successors map[task.ID][]task.ID // predecessor -> successors
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		tasks:      make(map[task.ID]*task.Task),
		successors: make(map[task.ID][]task.ID),
	}
}

// AddTask adds a task to the arena. Dependencies already present on t must
// name tasks that are in the graph.
func (g *Graph) AddTask(t *task.Task) error {
	if t == nil {
		return errs.New(errs.ErrCodeInvalidInput, "task must not be nil")
	}
	if err := errs.ValidateID("task", string(t.ID)); err != nil {
		return err
	}
	if _, exists := g.tasks[t.ID]; exists {
		return errs.New(errs.ErrCodeDuplicateID, "task %q already exists", t.ID)
	}
	for _, d := range t.Dependencies {
		if !d.Type.Valid() {
			return errs.New(errs.ErrCodeInvalidDependencyType, "task %q: unsupported dependency type %q", t.ID, d.Type)
		}
		if _, ok := g.tasks[d.Predecessor]; !ok {
			return errs.New(errs.ErrCodeNotFound, "task %q depends on unknown task %q", t.ID, d.Predecessor)
		}
	}
	g.tasks[t.ID] = t
	g.order = append(g.order, t.ID)
	for _, d := range t.Dependencies {
		g.successors[d.Predecessor] = append(g.successors[d.Predecessor], t.ID)
	}
	return nil
}

// RemoveTask removes a task and its own dependency edges. It does not check
// for dependents: callers must make sure no task depends on id
// (see HasDependents).
func (g *Graph) RemoveTask(id task.ID) error {
	t, ok := g.tasks[id]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "task %q not found", id)
	}
	for _, d := range t.Dependencies {
		g.unindex(d.Predecessor, id)
	}
	delete(g.tasks, id)
	delete(g.successors, id)
	g.order = slices.DeleteFunc(g.order, func(o task.ID) bool { return o == id })
	return nil
}

// Task returns the task with the given ID and true, or nil and false if not
// found. The returned pointer refers to the task in the graph.
func (g *Graph) Task(id task.ID) (*task.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Lookup returns the task with the given ID, or nil. It satisfies task.Lookup.
func (g *Graph) Lookup(id task.ID) *task.Task { return g.tasks[id] }

// Tasks returns all tasks in insertion order.
func (g *Graph) Tasks() []*task.Task {
	out := make([]*task.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.order) }

// AddEdge makes successor depend on predecessor with the given type.
//
// AddEdge rejects an unsupported type (INVALID_DEPENDENCY_TYPE), unknown
// tasks (NOT_FOUND), a task depending on itself (CYCLE_DETECTED) and an edge
// that already exists between the two tasks (DUPLICATE_DEPENDENCY). It does
// not check for longer cycles; see the package documentation.
func (g *Graph) AddEdge(successor, predecessor task.ID, typ task.DependencyType) error {
	if !typ.Valid() {
		return errs.New(errs.ErrCodeInvalidDependencyType, "unsupported dependency type %q (want FS or SS)", typ)
	}
	succ, ok := g.tasks[successor]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "task %q not found", successor)
	}
	if predecessor == "" {
		return errs.New(errs.ErrCodeNotFound, "task %q: predecessor must be set", successor)
	}
	if _, ok := g.tasks[predecessor]; !ok {
		return errs.New(errs.ErrCodeNotFound, "predecessor %q not found", predecessor)
	}
	if successor == predecessor {
		return errs.New(errs.ErrCodeCycleDetected, "task %q cannot depend on itself", successor)
	}
	if _, exists := succ.Dependency(predecessor); exists {
		return errs.New(errs.ErrCodeDuplicateDependency, "task %q already depends on %q", successor, predecessor)
	}

	succ.Dependencies = append(succ.Dependencies, task.Dependency{Type: typ, Predecessor: predecessor})
	g.successors[predecessor] = append(g.successors[predecessor], successor)
	return nil
}

// RemoveEdge removes the dependency of successor on predecessor.
func (g *Graph) RemoveEdge(successor, predecessor task.ID) error {
	succ, ok := g.tasks[successor]
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "task %q not found", successor)
	}
	if _, exists := succ.Dependency(predecessor); !exists {
		return errs.New(errs.ErrCodeNotFound, "task %q does not depend on %q", successor, predecessor)
	}
	succ.Dependencies = slices.DeleteFunc(succ.Dependencies, func(d task.Dependency) bool {
		return d.Predecessor == predecessor
	})
	g.unindex(predecessor, successor)
	return nil
}

func (g *Graph) unindex(predecessor, successor task.ID) {
	g.successors[predecessor] = slices.DeleteFunc(g.successors[predecessor], func(s task.ID) bool {
		return s == successor
	})
	if len(g.successors[predecessor]) == 0 {
		delete(g.successors, predecessor)
	}
}

// Successors returns the IDs of tasks that depend on id.
// The returned slice should not be modified.
func (g *Graph) Successors(id task.ID) []task.ID { return g.successors[id] }

// Predecessors returns the IDs of the tasks id depends on.
func (g *Graph) Predecessors(id task.ID) []task.ID {
	t, ok := g.tasks[id]
	if !ok {
		return nil
	}
	out := make([]task.ID, len(t.Dependencies))
	for i, d := range t.Dependencies {
		out[i] = d.Predecessor
	}
	return out
}

// HasDependents reports whether any task depends on id.
func (g *Graph) HasDependents(id task.ID) bool { return len(g.successors[id]) > 0 }

// Edges returns all dependencies, grouped by successor in task insertion order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, id := range g.order {
		for _, d := range g.tasks[id].Dependencies {
			out = append(out, Edge{Successor: id, Predecessor: d.Predecessor, Type: d.Type})
		}
	}
	return out
}

// EdgeCount returns the number of dependencies.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, t := range g.tasks {
		n += len(t.Dependencies)
	}
	return n
}

// TopologicalOrder orders the graph's tasks in insertion order tie-break.
func (g *Graph) TopologicalOrder() ([]*task.Task, error) {
	return TopologicalOrder(g.Tasks())
}

// TopologicalOrder orders tasks so that every predecessor comes before its
// successors, using Kahn's algorithm. Ties are broken by the order of
// tasks. Dependencies on tasks not in the slice are ignored.
//
// When the tasks contain a cycle, TopologicalOrder returns a CYCLE_DETECTED
// error and a nil slice.
func TopologicalOrder(tasks []*task.Task) ([]*task.Task, error) {
	pos := make(map[task.ID]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i
	}

	inDegree := make([]int, len(tasks))
	successors := make([][]int, len(tasks))
	for i, t := range tasks {
		for _, d := range t.Dependencies {
			p, ok := pos[d.Predecessor]
			if !ok {
				continue
			}
			inDegree[i]++
			successors[p] = append(successors[p], i)
		}
	}

	queue := make([]int, 0, len(tasks))
	for i := range tasks {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]*task.Task, 0, len(tasks))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, tasks[n])

		for _, s := range successors[n] {
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(order) != len(tasks) {
		return nil, errs.New(errs.ErrCodeCycleDetected,
			"dependency cycle: %d of %d tasks could not be ordered", len(tasks)-len(order), len(tasks))
	}
	return order, nil
}

// Checkpoint is a saved copy of a graph's state.
type Checkpoint struct {
	tasks      []*task.Task
	successors map[task.ID][]task.ID
}

// Checkpoint saves deep copies of all tasks and the successor index for a
// later Restore.
func (g *Graph) Checkpoint() Checkpoint {
	cp := Checkpoint{
		tasks:      make([]*task.Task, 0, len(g.order)),
		successors: make(map[task.ID][]task.ID, len(g.successors)),
	}
	for _, id := range g.order {
		cp.tasks = append(cp.tasks, g.tasks[id].Clone())
	}
	for id, succ := range g.successors {
		cp.successors[id] = slices.Clone(succ)
	}
	return cp
}

// Restore resets the graph to a checkpoint. Task pointers that existed at
// checkpoint time are reused and overwritten, so callers holding them see
// the restored values. Successors keep the order they had at checkpoint
// time.
func (g *Graph) Restore(cp Checkpoint) {
	old := g.tasks
	g.tasks = make(map[task.ID]*task.Task, len(cp.tasks))
	g.order = g.order[:0]
	g.successors = make(map[task.ID][]task.ID, len(cp.successors))

	for _, saved := range cp.tasks {
		t, ok := old[saved.ID]
		if ok {
			*t = *saved.Clone()
		} else {
			t = saved.Clone()
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}
	for id, succ := range cp.successors {
		if len(succ) > 0 {
			g.successors[id] = slices.Clone(succ)
		}
	}
}

// Clone returns an independent deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := New()
	c.Restore(g.Checkpoint())
	return c
}
