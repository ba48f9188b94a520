package task

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stackplan/pkg/calendar"
	errs "github.com/matzehuels/stackplan/pkg/errors"
)

// Status is the lifecycle state of a task.
type Status int

const (
	Pending Status = iota
	Blocked
	InProgress
	Completed
)

var statusNames = map[Status]string{
	Pending:    "pending",
	Blocked:    "blocked",
	InProgress: "in_progress",
	Completed:  "completed",
}

// String returns the lowercase name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus parses a status name as produced by String.
// Matching is case-insensitive and accepts "in-progress" and "inprogress".
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if norm == "inprogress" {
		norm = "in_progress"
	}
	for st, name := range statusNames {
		if name == norm {
			return st, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown status %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool { return s == Completed }

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to Status) bool {
	switch from {
	case Pending, Blocked:
		return to == Pending || to == Blocked || to == InProgress
	case InProgress:
		return to == Completed
	default:
		return false
	}
}

// Transition moves t to status to, applying the transition's date effects.
// today is the caller's current day.
//
//   - to InProgress: the task starts today (EarliestStart = today).
//   - to Completed: ExecutionDate and EarliestFinish become today, Duration
//     becomes the elapsed days and Slack is forced to 0.
//
// The task is left untouched when the transition is not allowed.
// Releasing the task's resources on completion is the caller's job.
func Transition(t *Task, to Status, today calendar.Date) error {
	if !CanTransition(t.Status, to) {
		return errs.New(errs.ErrCodeInvalidTransition, "task %s: %s -> %s is not allowed", t.ID, t.Status, to)
	}

	switch to {
	case InProgress:
		t.SetStart(today)
	case Completed:
		if today.Before(t.EarliestStart) {
			t.EarliestStart = today
		}
		t.ExecutionDate = today
		t.EarliestFinish = today
		t.Duration = today.Sub(t.EarliestStart) + 1
		t.Slack = 0
	}
	t.Status = to
	return nil
}

// Lookup resolves a task by ID. It returns nil for unknown IDs.
type Lookup func(ID) *Task

// CanProceed reports whether every dependency of t is satisfied: FS
// predecessors are Completed and SS predecessors are InProgress or
// Completed. Unknown predecessors are unsatisfied. A task without
// dependencies can always proceed.
func CanProceed(t *Task, lookup Lookup) bool {
	for _, d := range t.Dependencies {
		pred := lookup(d.Predecessor)
		if pred == nil {
			return false
		}
		switch d.Type {
		case FinishToStart:
			if pred.Status != Completed {
				return false
			}
		case StartToStart:
			if pred.Status != InProgress && pred.Status != Completed {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Reconcile re-derives a Pending or Blocked task's status from its
// dependencies and reports whether the status changed. Tasks in any other
// status are left alone.
func Reconcile(t *Task, lookup Lookup) bool {
	if t.Status != Pending && t.Status != Blocked {
		return false
	}
	next := Blocked
	if CanProceed(t, lookup) {
		next = Pending
	}
	if next == t.Status {
		return false
	}
	t.Status = next
	return true
}
