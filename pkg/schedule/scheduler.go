package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackplan/pkg/calendar"
	"github.com/matzehuels/stackplan/pkg/cpm"
	"github.com/matzehuels/stackplan/pkg/dag"
	"github.com/matzehuels/stackplan/pkg/dag/transform"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/ledger"
	"github.com/matzehuels/stackplan/pkg/observability"
	"github.com/matzehuels/stackplan/pkg/task"
)

// ProjectID identifies a project.
type ProjectID string

// Project describes a scheduled project.
type Project struct {
	ID             ProjectID
	Name           string
	Start          calendar.Date
	EarliestFinish calendar.Date // latest task finish, or Start without tasks
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock sets the clock that supplies "today" for status changes.
// The default is calendar.SystemClock{}.
func WithClock(c calendar.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// Scheduler keeps one project's schedule consistent across mutations.
type Scheduler struct {
	project Project
	graph   *dag.Graph
	ledger  *ledger.Ledger
	clock   calendar.Clock
	logger  *log.Logger
	last    *cpm.Result
}

// New creates a scheduler for an empty project starting on start. Bookings
// go to l, which may be shared with other projects; a nil l gets a fresh
// ledger.
func New(id ProjectID, name string, start calendar.Date, l *ledger.Ledger, opts ...Option) (*Scheduler, error) {
	if err := errs.ValidateID("project", string(id)); err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "project %q: start date must be set", id)
	}
	if l == nil {
		l = ledger.New()
	}
	s := &Scheduler{
		project: Project{ID: id, Name: name, Start: start, EarliestFinish: start},
		graph:   dag.New(),
		ledger:  l,
		clock:   calendar.SystemClock{},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Project returns the project's current description.
func (s *Scheduler) Project() Project { return s.project }

// Ledger returns the ledger the scheduler books resources in.
func (s *Scheduler) Ledger() *ledger.Ledger { return s.ledger }

// Clock returns the clock that supplies today for status changes.
func (s *Scheduler) Clock() calendar.Clock { return s.clock }

// Graph returns the task graph. Callers must not modify it.
func (s *Scheduler) Graph() *dag.Graph { return s.graph }

// Result returns the last successful calculation, or nil before the first.
func (s *Scheduler) Result() *cpm.Result { return s.last }

// Task returns a copy of the task with the given ID.
func (s *Scheduler) Task(id task.ID) (*task.Task, error) {
	t, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// Tasks returns copies of all tasks in insertion order.
func (s *Scheduler) Tasks() []*task.Task {
	tasks := s.graph.Tasks()
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Scheduler) find(id task.ID) (*task.Task, error) {
	t, ok := s.graph.Task(id)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "task %q not found in project %q", id, s.project.ID)
	}
	return t, nil
}

// Recalculate recomputes the schedule without any other change.
func (s *Scheduler) Recalculate() error {
	return s.mutate("recalculate", nil)
}

// mutate runs fn followed by recalculation as one transaction.
func (s *Scheduler) mutate(op string, fn func() error, keyvals ...any) error {
	graphCP := s.graph.Checkpoint()
	ledgerCP := s.ledger.Checkpoint()
	project := s.project
	last := s.last

	var err error
	if fn != nil {
		err = fn()
	}
	if err == nil {
		err = s.recalculate()
	}
	if err != nil {
		s.graph.Restore(graphCP)
		s.ledger.Restore(ledgerCP)
		s.project = project
		s.last = last

		kv := append([]any{"project", s.project.ID, "op", op, "code", errs.GetCode(err)}, keyvals...)
		s.logger.Warn("operation rolled back", append(kv, "err", errs.UserMessage(err))...)
		observability.Schedule().OnRollback(string(s.project.ID), op, err)
		return err
	}

	s.logger.Debug(op, append([]any{"project", s.project.ID}, keyvals...)...)
	return nil
}

// recalculate runs the critical path passes, applies them, moves bookings
// to the new dates and reconciles Pending/Blocked tasks.
func (s *Scheduler) recalculate() error {
	begin := time.Now()
	r, err := cpm.Calculate(s.graph, s.project.Start)
	if errs.Is(err, errs.ErrCodeCycleDetected) {
		if cycle := transform.FindCycle(s.graph); cycle != nil {
			err = errs.Wrap(errs.ErrCodeCycleDetected, err, "dependency cycle %s", formatCycle(cycle))
		}
	}
	observability.Schedule().OnRecalculate(string(s.project.ID), s.graph.Len(), time.Since(begin), err)
	if err != nil {
		return err
	}

	cpm.Apply(s.graph, r)
	if err := s.syncBookings(); err != nil {
		return err
	}
	for _, t := range s.graph.Tasks() {
		if task.Reconcile(t, s.graph.Lookup) {
			s.logger.Debug("status reconciled", "project", s.project.ID, "task", t.ID, "status", t.Status)
		}
	}

	s.project.EarliestFinish = r.EarliestFinish
	s.last = r
	return nil
}

type move struct {
	task *task.Task
	idx  int
}

// syncBookings re-books every binding whose span no longer matches its
// task. All stale bookings are released before any is booked again, so
// tasks moving together do not collide with their own old usage. A binding
// with an unset span holds no booking and is only booked.
func (s *Scheduler) syncBookings() error {
	var moves []move
	for _, t := range s.graph.Tasks() {
		for i, b := range t.Resources {
			if b.Start == t.EarliestStart && b.End == t.EarliestFinish {
				continue
			}
			if b.Start.IsZero() {
				moves = append(moves, move{task: t, idx: i})
				continue
			}
			if err := s.ledger.Release(b.Resource, string(s.project.ID), string(t.ID), b.Start, b.End, b.Quantity); err != nil {
				return err
			}
			moves = append(moves, move{task: t, idx: i})
		}
	}

	for _, m := range moves {
		b := &m.task.Resources[m.idx]
		_, err := s.ledger.Assign(b.Resource, string(s.project.ID), string(m.task.ID), m.task.EarliestStart, m.task.EarliestFinish, b.Quantity, b.Forced)
		if err != nil {
			return errs.Wrap(errs.GetCode(err), err, "task %q: rebooking resource %q for %s..%s",
				m.task.ID, b.Resource, m.task.EarliestStart, m.task.EarliestFinish)
		}
		b.Start, b.End = m.task.EarliestStart, m.task.EarliestFinish
	}
	return nil
}

// releaseAll releases every booking of t and clears its bindings.
func (s *Scheduler) releaseAll(t *task.Task) error {
	for _, b := range t.Resources {
		if err := s.ledger.Release(b.Resource, string(s.project.ID), string(t.ID), b.Start, b.End, b.Quantity); err != nil {
			return err
		}
	}
	t.Resources = nil
	return nil
}

func formatCycle(ids []task.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " -> "))
}
