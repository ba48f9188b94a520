package cpm

import (
	"github.com/matzehuels/stackplan/pkg/calendar"
	"github.com/matzehuels/stackplan/pkg/dag"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/task"
)

// Dates holds the computed schedule of one task.
type Dates struct {
	EarliestStart  calendar.Date
	EarliestFinish calendar.Date
	LatestFinish   calendar.Date
	Slack          int
}

// Result is the outcome of a critical path calculation.
type Result struct {
	ProjectStart   calendar.Date
	EarliestFinish calendar.Date // project finish
	Order          []task.ID     // topological order used for the passes
	Tasks          map[task.ID]Dates
}

// CriticalPath returns the tasks with zero slack in topological order.
func (r *Result) CriticalPath() []task.ID {
	var out []task.ID
	for _, id := range r.Order {
		if r.Tasks[id].Slack == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Calculate computes the schedule of every task in g for a project that
// starts on projectStart. The graph is not modified.
//
// For an empty graph the project finish is projectStart.
func Calculate(g *dag.Graph, projectStart calendar.Date) (*Result, error) {
	if projectStart.IsZero() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "project start must be set")
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	r := &Result{
		ProjectStart:   projectStart,
		EarliestFinish: projectStart,
		Order:          make([]task.ID, len(order)),
		Tasks:          make(map[task.ID]Dates, len(order)),
	}

	// Forward pass
	for i, t := range order {
		r.Order[i] = t.ID
		start := t.EarliestStart
		switch {
		case t.Status == task.InProgress || t.Status == task.Completed:
		case t.ManualStart:
			if lo, ok := minStart(t, r.Tasks); ok && lo.After(start) {
				start = lo
			}
		default:
			start = projectStart
			if lo, ok := minStart(t, r.Tasks); ok {
				start = lo
			}
		}
		d := Dates{EarliestStart: start, EarliestFinish: task.FinishFor(start, t.Duration)}
		if t.Status == task.Completed && !t.ExecutionDate.IsZero() {
			d.EarliestFinish = t.ExecutionDate
		}
		r.Tasks[t.ID] = d
	}

	for i, id := range r.Order {
		if ef := r.Tasks[id].EarliestFinish; i == 0 || ef.After(r.EarliestFinish) {
			r.EarliestFinish = ef
		}
	}

	// Backward pass
	for i := len(order) - 1; i >= 0; i-- {
		t := order[i]
		d := r.Tasks[t.ID]

		lf := r.EarliestFinish
		for j, s := range g.Successors(t.ID) {
			succ, _ := g.Task(s)
			dep, _ := succ.Dependency(t.ID)
			bound := r.Tasks[s].EarliestStart
			if dep.Type == task.FinishToStart {
				bound = bound.AddDays(-1)
			}
			if j == 0 || bound.Before(lf) {
				lf = bound
			}
		}

		d.LatestFinish = lf
		d.Slack = max(0, lf.Sub(d.EarliestFinish))
		if t.Status == task.Completed {
			d.Slack = 0
		}
		r.Tasks[t.ID] = d
	}

	return r, nil
}

// Apply writes r onto the tasks of g. Tasks missing from r are left alone.
func Apply(g *dag.Graph, r *Result) {
	for id, d := range r.Tasks {
		t, ok := g.Task(id)
		if !ok {
			continue
		}
		t.EarliestStart = d.EarliestStart
		t.EarliestFinish = d.EarliestFinish
		t.LatestFinish = d.LatestFinish
		t.Slack = d.Slack
	}
}

// MinStart returns the earliest start t's dependencies allow, computed from
// the current dates of its predecessors. It reports false if t has no
// dependency on a known task.
func MinStart(t *task.Task, lookup task.Lookup) (calendar.Date, bool) {
	dates := make(map[task.ID]Dates, len(t.Dependencies))
	for _, d := range t.Dependencies {
		if p := lookup(d.Predecessor); p != nil {
			dates[p.ID] = Dates{EarliestStart: p.EarliestStart, EarliestFinish: p.EarliestFinish}
		}
	}
	return minStart(t, dates)
}

func minStart(t *task.Task, dates map[task.ID]Dates) (calendar.Date, bool) {
	var lo calendar.Date
	found := false
	for _, dep := range t.Dependencies {
		p, ok := dates[dep.Predecessor]
		if !ok {
			continue
		}
		bound := p.EarliestStart
		if dep.Type == task.FinishToStart {
			bound = p.EarliestFinish.AddDays(1)
		}
		if !found || bound.After(lo) {
			lo = bound
			found = true
		}
	}
	return lo, found
}
