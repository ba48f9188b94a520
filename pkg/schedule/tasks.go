package schedule

import (
	"github.com/matzehuels/stackplan/pkg/calendar"
	"github.com/matzehuels/stackplan/pkg/cpm"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/task"
)

// TaskInput describes a task to add.
type TaskInput struct {
	ID           task.ID
	Title        string
	Description  string
	Duration     int
	Assignees    []string
	Dependencies []task.Dependency
}

// AddTask adds a Pending task and its dependencies, then recalculates.
// All dependencies must name existing tasks.
func (s *Scheduler) AddTask(in TaskInput) (*task.Task, error) {
	var added *task.Task
	err := s.mutate("add task", func() error {
		t, err := task.New(in.ID, in.Title, in.Duration, s.project.Start)
		if err != nil {
			return err
		}
		t.Description = in.Description
		for _, u := range in.Assignees {
			t.AddAssignee(u)
		}
		if err := s.graph.AddTask(t); err != nil {
			return err
		}
		for _, d := range in.Dependencies {
			if err := s.graph.AddEdge(t.ID, d.Predecessor, d.Type); err != nil {
				return err
			}
		}
		added = t
		return nil
	}, "task", in.ID)
	if err != nil {
		return nil, err
	}
	return added.Clone(), nil
}

// RemoveTask removes a task and releases its bookings. It fails with
// HAS_DEPENDENTS while another task depends on it.
func (s *Scheduler) RemoveTask(id task.ID) error {
	return s.mutate("remove task", func() error {
		t, err := s.find(id)
		if err != nil {
			return err
		}
		if s.graph.HasDependents(id) {
			return errs.New(errs.ErrCodeHasDependents, "task %q has dependents %v", id, s.graph.Successors(id))
		}
		if err := s.releaseAll(t); err != nil {
			return err
		}
		return s.graph.RemoveTask(id)
	}, "task", id)
}

// AddDependency makes successor depend on predecessor. A dependency that
// closes a cycle is rejected with CYCLE_DETECTED and not kept.
func (s *Scheduler) AddDependency(successor, predecessor task.ID, typ task.DependencyType) (*task.Task, error) {
	return s.mutateTask("add dependency", successor, func(*task.Task) error {
		return s.graph.AddEdge(successor, predecessor, typ)
	}, "predecessor", predecessor, "type", typ)
}

// RemoveDependency removes the dependency of successor on predecessor.
func (s *Scheduler) RemoveDependency(successor, predecessor task.ID) (*task.Task, error) {
	return s.mutateTask("remove dependency", successor, func(*task.Task) error {
		return s.graph.RemoveEdge(successor, predecessor)
	}, "predecessor", predecessor)
}

// SetDuration changes a task's duration. The duration of a completed task
// is derived from its execution and cannot be set.
func (s *Scheduler) SetDuration(id task.ID, days int) (*task.Task, error) {
	return s.mutateTask("set duration", id, func(t *task.Task) error {
		if t.Status == task.Completed {
			return errs.New(errs.ErrCodeInvalidInput, "task %q is completed; its duration is fixed", id)
		}
		return t.SetDuration(days)
	}, "days", days)
}

// FixStartDate fixes a task's start. The date must not be earlier than what
// the task's dependencies allow (DATE_BEFORE_DEPENDENCY_MINIMUM). The task
// keeps the date across recalculations until ClearManualStart.
func (s *Scheduler) FixStartDate(id task.ID, date calendar.Date) (*task.Task, error) {
	return s.mutateTask("fix start date", id, func(t *task.Task) error {
		return s.fixStart(t, date)
	}, "date", date)
}

func (s *Scheduler) fixStart(t *task.Task, date calendar.Date) error {
	if date.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "task %q: start date must be set", t.ID)
	}
	if t.Status == task.InProgress || t.Status == task.Completed {
		return errs.New(errs.ErrCodeInvalidInput, "task %q is %s; its start cannot be fixed", t.ID, t.Status)
	}
	if lo, ok := cpm.MinStart(t, s.graph.Lookup); ok && date.Before(lo) {
		return errs.New(errs.ErrCodeDateBeforeMinimum,
			"task %q cannot start %s: its dependencies allow %s at the earliest", t.ID, date, lo)
	}
	t.SetStart(date)
	t.ManualStart = true
	return nil
}

// ClearManualStart returns a task's start to the forward pass.
func (s *Scheduler) ClearManualStart(id task.ID) (*task.Task, error) {
	return s.mutateTask("clear manual start", id, func(t *task.Task) error {
		t.ManualStart = false
		return nil
	})
}

// SetProjectStart moves the project start. Tasks without dependencies and
// without a fixed start follow it.
func (s *Scheduler) SetProjectStart(date calendar.Date) error {
	return s.mutate("set project start", func() error {
		if date.IsZero() {
			return errs.New(errs.ErrCodeInvalidInput, "project %q: start date must be set", s.project.ID)
		}
		s.project.Start = date
		return nil
	}, "date", date)
}

// ChangeStatus applies an explicit status change as of the scheduler
// clock's today. Completing a task releases all of its bookings first.
// Disallowed changes fail with INVALID_TRANSITION and leave the task as it
// was.
func (s *Scheduler) ChangeStatus(id task.ID, to task.Status) (*task.Task, error) {
	return s.ChangeStatusOn(id, to, s.clock.Today())
}

// ChangeStatusOn is ChangeStatus with an explicit today, for a start or
// completion recorded after the fact.
func (s *Scheduler) ChangeStatusOn(id task.ID, to task.Status, today calendar.Date) (*task.Task, error) {
	if today.IsZero() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "task %q: status change date must be set", id)
	}
	return s.mutateTask("change status", id, func(t *task.Task) error {
		if !task.CanTransition(t.Status, to) {
			return errs.New(errs.ErrCodeInvalidTransition, "task %q: %s -> %s is not allowed", id, t.Status, to)
		}
		if to == task.Completed {
			if err := s.releaseAll(t); err != nil {
				return err
			}
		}
		return task.Transition(t, to, today)
	}, "status", to, "today", today)
}

// Reschedule fixes a task's start on start and books its resources again
// over the new span, even when the span did not change. With force, the
// new bookings skip the capacity check.
func (s *Scheduler) Reschedule(id task.ID, start calendar.Date, force bool) (*task.Task, error) {
	return s.mutateTask("reschedule", id, func(t *task.Task) error {
		if err := s.fixStart(t, start); err != nil {
			return err
		}
		for i := range t.Resources {
			b := &t.Resources[i]
			if err := s.ledger.Release(b.Resource, string(s.project.ID), string(t.ID), b.Start, b.End, b.Quantity); err != nil {
				return err
			}
			// An unset span marks the binding for booking by syncBookings.
			b.Start, b.End = calendar.Date{}, calendar.Date{}
			b.Forced = force
		}
		return nil
	}, "date", start, "force", force)
}

// mutateTask runs fn on the task id inside a transaction and returns a copy
// of the task afterwards.
func (s *Scheduler) mutateTask(op string, id task.ID, fn func(*task.Task) error, keyvals ...any) (*task.Task, error) {
	err := s.mutate(op, func() error {
		t, err := s.find(id)
		if err != nil {
			return err
		}
		return fn(t)
	}, append([]any{"task", id}, keyvals...)...)
	if err != nil {
		return nil, err
	}
	return s.Task(id)
}
