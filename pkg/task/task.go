package task

import (
	"slices"

	"github.com/matzehuels/stackplan/pkg/calendar"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/ledger"
)

// ID identifies a task within a project.
type ID string

// DependencyType is the kind of constraint a dependency imposes.
type DependencyType string

const (
	// FinishToStart: the successor starts the day after the predecessor finishes.
	FinishToStart DependencyType = "FS"
	// StartToStart: the successor starts no earlier than the predecessor starts.
	StartToStart DependencyType = "SS"
)

// Valid reports whether t is one of the supported dependency types.
func (t DependencyType) Valid() bool {
	return t == FinishToStart || t == StartToStart
}

// ParseDependencyType converts a boundary token into a DependencyType.
// Only "FS" and "SS" are accepted.
func ParseDependencyType(s string) (DependencyType, error) {
	t := DependencyType(s)
	if !t.Valid() {
		return "", errs.New(errs.ErrCodeInvalidDependencyType, "unsupported dependency type %q (want FS or SS)", s)
	}
	return t, nil
}

// Dependency is an edge owned by its successor task.
type Dependency struct {
	Type        DependencyType
	Predecessor ID
}

// Binding records a resource booked for a task over an inclusive span.
type Binding struct {
	Resource ledger.ResourceID
	Quantity int
	Start    calendar.Date
	End      calendar.Date
	Forced   bool // booked without a capacity check
}

// Task is a unit of work with a duration, derived dates and dependencies.
//
// The zero value is not usable - use New.
type Task struct {
	ID          ID
	Title       string
	Description string
	Duration    int // days, always > 0

	EarliestStart  calendar.Date
	EarliestFinish calendar.Date
	LatestFinish   calendar.Date
	ExecutionDate  calendar.Date // set on completion only
	Slack          int

	Status      Status
	ManualStart bool // start fixed by the user, exempt from the forward pass

	Assignees    []string // user references, sorted, unique
	Resources    []Binding
	Dependencies []Dependency
}

// New creates a Pending task starting on start with dates derived from duration.
func New(id ID, title string, duration int, start calendar.Date) (*Task, error) {
	if err := errs.ValidateID("task", string(id)); err != nil {
		return nil, err
	}
	if err := errs.ValidateDuration(duration); err != nil {
		return nil, err
	}
	t := &Task{
		ID:       id,
		Title:    title,
		Duration: duration,
		Status:   Pending,
	}
	t.SetStart(start)
	t.LatestFinish = t.EarliestFinish
	return t, nil
}

// FinishFor returns the finish day of a task of the given duration starting on start.
func FinishFor(start calendar.Date, duration int) calendar.Date {
	return start.AddDays(duration - 1)
}

// SetStart moves the task's earliest start and recomputes its earliest finish.
func (t *Task) SetStart(start calendar.Date) {
	t.EarliestStart = start
	t.EarliestFinish = FinishFor(start, t.Duration)
}

// SetDuration changes the duration and recomputes the earliest finish.
func (t *Task) SetDuration(days int) error {
	if err := errs.ValidateDuration(days); err != nil {
		return err
	}
	t.Duration = days
	t.EarliestFinish = FinishFor(t.EarliestStart, days)
	return nil
}

// Anchored reports whether the forward pass must keep the task's start:
// the start was fixed manually, or the task has actually started.
func (t *Task) Anchored() bool {
	return t.ManualStart || t.Status == InProgress || t.Status == Completed
}

// Dependency returns the edge to pred, if any.
func (t *Task) Dependency(pred ID) (Dependency, bool) {
	for _, d := range t.Dependencies {
		if d.Predecessor == pred {
			return d, true
		}
	}
	return Dependency{}, false
}

// AddAssignee adds a user reference. Adding an existing user is a no-op.
func (t *Task) AddAssignee(user string) {
	i, found := slices.BinarySearch(t.Assignees, user)
	if found {
		return
	}
	t.Assignees = slices.Insert(t.Assignees, i, user)
}

// RemoveAssignee removes a user reference and reports whether it was present.
func (t *Task) RemoveAssignee(user string) bool {
	i, found := slices.BinarySearch(t.Assignees, user)
	if !found {
		return false
	}
	t.Assignees = slices.Delete(t.Assignees, i, i+1)
	return true
}

// HasAssignee reports whether user is assigned to the task.
func (t *Task) HasAssignee(user string) bool {
	_, found := slices.BinarySearch(t.Assignees, user)
	return found
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Assignees = slices.Clone(t.Assignees)
	c.Resources = slices.Clone(t.Resources)
	c.Dependencies = slices.Clone(t.Dependencies)
	return &c
}
