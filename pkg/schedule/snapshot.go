package schedule

import (
	"github.com/matzehuels/stackplan/pkg/calendar"
	"github.com/matzehuels/stackplan/pkg/ledger"
	"github.com/matzehuels/stackplan/pkg/task"
)

// Snapshot is a self-contained copy of a project's computed schedule.
type Snapshot struct {
	Project      Project
	Tasks        []*task.Task // topological order
	CriticalPath []task.ID
	Resources    []*ledger.Resource // resources booked by the project's tasks
}

// Snapshot returns a copy of the schedule as of the last calculation.
// Tasks are in the order used by the last calculation.
func (s *Scheduler) Snapshot() *Snapshot {
	snap := &Snapshot{Project: s.project}

	order := s.graph.Tasks()
	if s.last != nil {
		order = make([]*task.Task, 0, len(s.last.Order))
		for _, id := range s.last.Order {
			if t, ok := s.graph.Task(id); ok {
				order = append(order, t)
			}
		}
		snap.CriticalPath = s.last.CriticalPath()
	}

	seen := make(map[ledger.ResourceID]bool)
	for _, t := range order {
		snap.Tasks = append(snap.Tasks, t.Clone())
		for _, b := range t.Resources {
			if seen[b.Resource] {
				continue
			}
			seen[b.Resource] = true
			if r, ok := s.ledger.Resource(b.Resource); ok {
				c := *r
				c.Usage = append([]ledger.UsageRange(nil), r.Usage...)
				snap.Resources = append(snap.Resources, &c)
			}
		}
	}
	return snap
}

// Span returns the first and last day covered by the snapshot's tasks.
func (s *Snapshot) Span() (start, end calendar.Date) {
	start, end = s.Project.Start, s.Project.EarliestFinish
	for _, t := range s.Tasks {
		if t.EarliestStart.Before(start) {
			start = t.EarliestStart
		}
	}
	return start, end
}
