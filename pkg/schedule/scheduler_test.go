package schedule

import (
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackplan/pkg/calendar"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/ledger"
	"github.com/matzehuels/stackplan/pkg/observability"
	"github.com/matzehuels/stackplan/pkg/task"
)

func day(s string) calendar.Date { return calendar.MustParse(s) }

func newScheduler(t *testing.T, today string, l *ledger.Ledger) *Scheduler {
	t.Helper()
	s, err := New("p1", "Project", day("2025-01-01"), l,
		WithLogger(log.New(io.Discard)),
		WithClock(calendar.FixedClock(day(today))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func add(t *testing.T, s *Scheduler, id task.ID, dur int, deps ...task.Dependency) *task.Task {
	t.Helper()
	tk, err := s.AddTask(TaskInput{ID: id, Title: string(id), Duration: dur, Dependencies: deps})
	if err != nil {
		t.Fatalf("AddTask(%s): %v", id, err)
	}
	return tk
}

func fs(pred task.ID) task.Dependency { return task.Dependency{Type: task.FinishToStart, Predecessor: pred} }
func ss(pred task.ID) task.Dependency { return task.Dependency{Type: task.StartToStart, Predecessor: pred} }

func mustTask(t *testing.T, s *Scheduler, id task.ID) *task.Task {
	t.Helper()
	tk, err := s.Task(id)
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

func addResource(t *testing.T, l *ledger.Ledger, id ledger.ResourceID, typ string, capacity int) {
	t.Helper()
	if err := l.AddResource(ledger.Resource{ID: id, Name: string(id), Type: typ, Capacity: capacity}); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("", "x", day("2025-01-01"), nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("empty id: got %v, want INVALID_INPUT", err)
	}
	if _, err := New("p", "x", calendar.Date{}, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unset start: got %v, want INVALID_INPUT", err)
	}
	s := newScheduler(t, "2025-01-01", nil)
	if s.Ledger() == nil {
		t.Fatal("nil ledger not replaced")
	}
	if p := s.Project(); p.EarliestFinish != p.Start {
		t.Errorf("empty project finish = %v, want start %v", p.EarliestFinish, p.Start)
	}
}

func TestCriticalPathScenario(t *testing.T) {
	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "A", 3)
	b := add(t, s, "B", 2, fs("A"))

	if b.EarliestStart != day("2025-01-04") || b.EarliestFinish != day("2025-01-05") {
		t.Errorf("B = %v..%v, want 2025-01-04..2025-01-05", b.EarliestStart, b.EarliestFinish)
	}
	a := mustTask(t, s, "A")
	if a.EarliestStart != day("2025-01-01") || a.EarliestFinish != day("2025-01-03") {
		t.Errorf("A = %v..%v, want 2025-01-01..2025-01-03", a.EarliestStart, a.EarliestFinish)
	}
	if a.Slack != 0 || b.Slack != 0 {
		t.Errorf("slack A=%d B=%d, want 0 0", a.Slack, b.Slack)
	}
	if a.LatestFinish != day("2025-01-03") {
		t.Errorf("A latest finish = %v, want 2025-01-03", a.LatestFinish)
	}
	if got := s.Project().EarliestFinish; got != day("2025-01-05") {
		t.Errorf("project finish = %v, want 2025-01-05", got)
	}
	if b.Status != task.Blocked {
		t.Errorf("B status = %s, want blocked", b.Status)
	}
}

func TestAddTaskErrors(t *testing.T) {
	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "A", 1)

	tests := []struct {
		name string
		in   TaskInput
		want errs.Code
	}{
		{"duplicate", TaskInput{ID: "A", Duration: 1}, errs.ErrCodeDuplicateID},
		{"empty id", TaskInput{ID: " ", Duration: 1}, errs.ErrCodeInvalidInput},
		{"zero duration", TaskInput{ID: "B", Duration: 0}, errs.ErrCodeInvalidInput},
		{"unknown dep", TaskInput{ID: "B", Duration: 1, Dependencies: []task.Dependency{fs("Z")}}, errs.ErrCodeNotFound},
		{"bad dep type", TaskInput{ID: "B", Duration: 1, Dependencies: []task.Dependency{{Type: "FF", Predecessor: "A"}}}, errs.ErrCodeInvalidDependencyType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddTask(tt.in); !errs.Is(err, tt.want) {
				t.Errorf("AddTask: got %v, want %s", err, tt.want)
			}
			if s.Graph().Len() != 1 {
				t.Errorf("failed AddTask left %d tasks", s.Graph().Len())
			}
		})
	}
}

func TestAddDependencyCycle(t *testing.T) {
	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "a", 1)
	add(t, s, "b", 2, fs("a"))
	add(t, s, "c", 1, ss("b"))
	before := s.Graph().Edges()
	datesBefore := s.Tasks()

	_, err := s.AddDependency("a", "c", task.FinishToStart)
	if !errs.Is(err, errs.ErrCodeCycleDetected) {
		t.Fatalf("got %v, want CYCLE_DETECTED", err)
	}
	if !strings.Contains(err.Error(), "->") {
		t.Errorf("error %q does not name the cycle", err)
	}
	if after := s.Graph().Edges(); !slices.Equal(before, after) {
		t.Errorf("edges changed: %v -> %v", before, after)
	}
	a := mustTask(t, s, "a")
	if len(a.Dependencies) != 0 {
		t.Errorf("cyclic edge retained: %v", a.Dependencies)
	}
	for i, tk := range s.Tasks() {
		if tk.EarliestStart != datesBefore[i].EarliestStart || tk.Status != datesBefore[i].Status {
			t.Errorf("%s changed after rejected edge", tk.ID)
		}
	}
}

func TestDependencyStatus(t *testing.T) {
	s := newScheduler(t, "2025-01-03", nil)
	add(t, s, "Y", 2)
	x := add(t, s, "X", 1, fs("Y"))
	if x.Status != task.Blocked {
		t.Fatalf("X status = %s, want blocked", x.Status)
	}

	if _, err := s.ChangeStatus("Y", task.InProgress); err != nil {
		t.Fatal(err)
	}
	if got := mustTask(t, s, "X").Status; got != task.Blocked {
		t.Errorf("X status with Y in progress = %s, want blocked", got)
	}
	if _, err := s.ChangeStatus("Y", task.Completed); err != nil {
		t.Fatal(err)
	}
	if got := mustTask(t, s, "X").Status; got != task.Pending {
		t.Errorf("X status with Y completed = %s, want pending", got)
	}

	// Removing the only dependency unblocks as well.
	s2 := newScheduler(t, "2025-01-01", nil)
	add(t, s2, "Y", 1)
	add(t, s2, "X", 1, ss("Y"))
	x, err := s2.RemoveDependency("X", "Y")
	if err != nil {
		t.Fatal(err)
	}
	if x.Status != task.Pending {
		t.Errorf("X status without deps = %s, want pending", x.Status)
	}
	if _, err := s2.RemoveDependency("X", "Y"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("second RemoveDependency: got %v, want NOT_FOUND", err)
	}
}

func TestChangeStatus(t *testing.T) {
	s := newScheduler(t, "2025-01-05", nil)
	add(t, s, "a", 2)

	a, err := s.ChangeStatus("a", task.InProgress)
	if err != nil {
		t.Fatal(err)
	}
	if a.EarliestStart != day("2025-01-05") || a.EarliestFinish != day("2025-01-06") {
		t.Errorf("in progress dates = %v..%v", a.EarliestStart, a.EarliestFinish)
	}

	for _, to := range []task.Status{task.Pending, task.Blocked} {
		if _, err := s.ChangeStatus("a", to); !errs.Is(err, errs.ErrCodeInvalidTransition) {
			t.Errorf("in_progress -> %s: got %v, want INVALID_TRANSITION", to, err)
		}
	}

	a, err = s.ChangeStatus("a", task.Completed)
	if err != nil {
		t.Fatal(err)
	}
	if a.ExecutionDate != day("2025-01-05") || a.Duration != 1 || a.Slack != 0 {
		t.Errorf("completed = exec %v dur %d slack %d", a.ExecutionDate, a.Duration, a.Slack)
	}

	for _, to := range []task.Status{task.Pending, task.InProgress, task.Blocked} {
		if _, err := s.ChangeStatus("a", to); !errs.Is(err, errs.ErrCodeInvalidTransition) {
			t.Errorf("completed -> %s: got %v, want INVALID_TRANSITION", to, err)
		}
		if got := mustTask(t, s, "a").Status; got != task.Completed {
			t.Errorf("status after rejected change = %s", got)
		}
	}

	add(t, s, "b", 1)
	if _, err := s.ChangeStatus("b", task.Completed); !errs.Is(err, errs.ErrCodeInvalidTransition) {
		t.Errorf("pending -> completed: got %v, want INVALID_TRANSITION", err)
	}
}

func TestRemoveTask(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "crane", "equipment", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 2)
	add(t, s, "b", 1, fs("a"))
	if _, err := s.AssignResource("b", "crane", 1, false); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveTask("a"); !errs.Is(err, errs.ErrCodeHasDependents) {
		t.Errorf("RemoveTask(a): got %v, want HAS_DEPENDENTS", err)
	}
	if err := s.RemoveTask("b"); err != nil {
		t.Fatal(err)
	}
	r, _ := l.Resource("crane")
	if r.ActiveUsage != 0 || len(r.Usage) != 0 {
		t.Errorf("bookings of removed task kept: %+v", r.Usage)
	}
	if err := s.RemoveTask("a"); err != nil {
		t.Errorf("RemoveTask(a) after b is gone: %v", err)
	}
	if err := s.RemoveTask("a"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("RemoveTask missing: got %v, want NOT_FOUND", err)
	}
}

func TestFixStartDate(t *testing.T) {
	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "a", 3)
	add(t, s, "b", 1, fs("a"))

	_, err := s.FixStartDate("b", day("2025-01-03"))
	if !errs.Is(err, errs.ErrCodeDateBeforeMinimum) {
		t.Fatalf("got %v, want DATE_BEFORE_DEPENDENCY_MINIMUM", err)
	}
	if mustTask(t, s, "b").ManualStart {
		t.Error("rejected fix left the manual flag set")
	}

	b, err := s.FixStartDate("b", day("2025-01-10"))
	if err != nil {
		t.Fatal(err)
	}
	if !b.ManualStart || b.EarliestStart != day("2025-01-10") {
		t.Errorf("b = %v manual=%v", b.EarliestStart, b.ManualStart)
	}
	if err := s.Recalculate(); err != nil {
		t.Fatal(err)
	}
	if got := mustTask(t, s, "b").EarliestStart; got != day("2025-01-10") {
		t.Errorf("recalculation moved manual start to %v", got)
	}

	// A fixed task without dependencies may start before the project.
	a, err := s.FixStartDate("a", day("2024-12-30"))
	if err != nil {
		t.Fatal(err)
	}
	if a.EarliestStart != day("2024-12-30") {
		t.Errorf("a start = %v", a.EarliestStart)
	}

	b, err = s.ClearManualStart("b")
	if err != nil {
		t.Fatal(err)
	}
	if b.ManualStart || b.EarliestStart != day("2025-01-02") {
		t.Errorf("after clear: b = %v manual=%v, want 2025-01-02", b.EarliestStart, b.ManualStart)
	}
}

func TestSetDurationAndProjectStart(t *testing.T) {
	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "a", 1)
	add(t, s, "b", 1, fs("a"))

	if _, err := s.SetDuration("a", 4); err != nil {
		t.Fatal(err)
	}
	if got := mustTask(t, s, "b").EarliestStart; got != day("2025-01-05") {
		t.Errorf("b start = %v, want 2025-01-05", got)
	}
	if _, err := s.SetDuration("a", 0); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("zero duration: got %v, want INVALID_INPUT", err)
	}
	if got := mustTask(t, s, "a").Duration; got != 4 {
		t.Errorf("rejected duration kept: %d", got)
	}

	if err := s.SetProjectStart(day("2025-03-01")); err != nil {
		t.Fatal(err)
	}
	if got := mustTask(t, s, "a").EarliestStart; got != day("2025-03-01") {
		t.Errorf("a start = %v, want 2025-03-01", got)
	}
	if got := s.Project().EarliestFinish; got != day("2025-03-05") {
		t.Errorf("project finish = %v, want 2025-03-05", got)
	}
	if err := s.SetProjectStart(calendar.Date{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unset start: got %v", err)
	}
	if got := s.Project().Start; got != day("2025-03-01") {
		t.Errorf("project start after rejected change = %v", got)
	}
}

func TestAssignCapacity(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "room", 2)
	s := newScheduler(t, "2025-02-01", l)
	if err := s.SetProjectStart(day("2025-02-01")); err != nil {
		t.Fatal(err)
	}
	add(t, s, "t1", 5)
	if _, err := s.AssignResource("t1", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FixStartDate(add(t, s, "t2", 2).ID, day("2025-02-03")); err != nil {
		t.Fatal(err)
	}

	_, err := s.AssignResource("t2", "r", 2, false)
	if !errs.Is(err, errs.ErrCodeInsufficientCapacity) {
		t.Fatalf("got %v, want INSUFFICIENT_CAPACITY", err)
	}
	if len(mustTask(t, s, "t2").Resources) != 0 {
		t.Error("rejected booking recorded on task")
	}

	t2, err := s.AssignResource("t2", "r", 2, true)
	if err != nil {
		t.Fatalf("forced assign: %v", err)
	}
	if !t2.Resources[0].Forced {
		t.Error("binding not marked forced")
	}
	if got, _ := l.Load("r", day("2025-02-03")); got != 3 {
		t.Errorf("load on 02-03 = %d, want 3", got)
	}
	if ok, _ := l.CheckAvailability("r", day("2025-02-04"), day("2025-02-04"), 1); ok {
		t.Error("availability ignores forced usage")
	}

	if _, err := s.AssignResource("t2", "r", 1, true); !errs.Is(err, errs.ErrCodeDuplicateID) {
		t.Errorf("second binding: got %v, want DUPLICATE_ID", err)
	}
	if _, err := s.AssignResource("t2", "nope", 1, false); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("unknown resource: got %v, want NOT_FOUND", err)
	}
	addResource(t, l, "spare", "room", 4)
	if _, err := s.AssignResource("t1", "spare", 0, false); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("zero quantity: got %v, want INVALID_INPUT", err)
	}
}

func TestBookingsFollowDates(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 2)
	add(t, s, "b", 1, fs("a"))
	if _, err := s.AssignResource("b", "r", 1, false); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetDuration("a", 4); err != nil {
		t.Fatal(err)
	}
	b := mustTask(t, s, "b")
	if b.Resources[0].Start != day("2025-01-05") || b.Resources[0].End != day("2025-01-05") {
		t.Errorf("binding span = %v..%v, want 2025-01-05", b.Resources[0].Start, b.Resources[0].End)
	}
	r, _ := l.Resource("r")
	if len(r.Usage) != 1 || r.Usage[0].Start != day("2025-01-05") || r.ActiveUsage != 1 {
		t.Errorf("ledger usage = %+v (active %d)", r.Usage, r.ActiveUsage)
	}
}

func TestRebookingConflictRollsBack(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 2)
	add(t, s, "b", 5)
	add(t, s, "c", 1, fs("b"))
	if _, err := s.AssignResource("a", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignResource("c", "r", 1, false); err != nil {
		t.Fatal(err)
	}

	// Shortening b pulls c onto a's booking.
	_, err := s.SetDuration("b", 1)
	if !errs.Is(err, errs.ErrCodeInsufficientCapacity) {
		t.Fatalf("got %v, want INSUFFICIENT_CAPACITY", err)
	}
	if got := mustTask(t, s, "b").Duration; got != 5 {
		t.Errorf("b duration = %d, want 5 after rollback", got)
	}
	c := mustTask(t, s, "c")
	if c.EarliestStart != day("2025-01-06") || c.Resources[0].Start != day("2025-01-06") {
		t.Errorf("c moved despite rollback: %v, binding %v", c.EarliestStart, c.Resources[0].Start)
	}
	r, _ := l.Resource("r")
	if r.ActiveUsage != 2 || len(r.Usage) != 2 {
		t.Errorf("ledger changed: active %d usage %+v", r.ActiveUsage, r.Usage)
	}
}

func TestCompleteReleasesBookings(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-02", l)
	add(t, s, "a", 3)
	if _, err := s.AssignResource("a", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ChangeStatus("a", task.InProgress); err != nil {
		t.Fatal(err)
	}
	a := mustTask(t, s, "a")
	if a.Resources[0].Start != day("2025-01-02") {
		t.Errorf("booking did not follow start: %v", a.Resources[0].Start)
	}

	a, err := s.ChangeStatus("a", task.Completed)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Resources) != 0 {
		t.Errorf("completed task keeps bindings %v", a.Resources)
	}
	r, _ := l.Resource("r")
	if r.ActiveUsage != 0 || len(r.Usage) != 0 {
		t.Errorf("bookings not released: %+v", r.Usage)
	}
	if _, err := s.AssignResource("a", "r", 1, false); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("assign to completed task: got %v, want INVALID_INPUT", err)
	}
}

func TestReleaseResource(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 1)
	if _, err := s.AssignResource("a", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReleaseResource("a", "r"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReleaseResource("a", "r"); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("second release: got %v, want NOT_FOUND", err)
	}
	if err := l.Release("r", "p1", "a", day("2025-01-01"), day("2025-01-01"), 1); !errs.IsInvariantViolation(err) {
		t.Errorf("ledger double release: got %v, want invariant violation", err)
	}
}

func TestExclusiveResources(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "lab", "room", 1)
	s := newScheduler(t, "2025-01-01", l)
	other, err := New("p2", "Other", day("2025-01-01"), l, WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AssociateResource("lab"); err != nil {
		t.Fatal(err)
	}
	if err := other.AssociateResource("lab"); !errs.Is(err, errs.ErrCodeAlreadyExclusive) {
		t.Errorf("second associate: got %v, want ALREADY_EXCLUSIVE", err)
	}

	if _, err := other.AddTask(TaskInput{ID: "x", Duration: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := other.AssignResource("x", "lab", 1, true); !errs.Is(err, errs.ErrCodeResourceReserved) {
		t.Errorf("assign reserved: got %v, want RESOURCE_RESERVED", err)
	}
	add(t, s, "y", 1)
	if _, err := s.AssignResource("y", "lab", 1, false); err != nil {
		t.Errorf("owner assign: %v", err)
	}
}

func TestAlternativesAndReassign(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r1", "crew", 1)
	addResource(t, l, "r2", "crew", 2)
	addResource(t, l, "r3", "crew", 3)
	addResource(t, l, "v", "vehicle", 5)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 2)
	add(t, s, "b", 2)
	if _, err := s.AssignResource("a", "r1", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignResource("b", "r1", 1, false); !errs.Is(err, errs.ErrCodeInsufficientCapacity) {
		t.Fatalf("expected conflict, got %v", err)
	}

	alts, err := s.FindAlternativeResources("b", "r1", 1)
	if err != nil {
		t.Fatal(err)
	}
	var ids []ledger.ResourceID
	for _, c := range alts {
		ids = append(ids, c.Resource.ID)
	}
	if !slices.Equal(ids, []ledger.ResourceID{"r3", "r2"}) {
		t.Errorf("alternatives = %v, want [r3 r2]", ids)
	}

	if _, err := s.ReassignResource("a", "r1", "r3", false); err != nil {
		t.Fatal(err)
	}
	a := mustTask(t, s, "a")
	if len(a.Resources) != 1 || a.Resources[0].Resource != "r3" {
		t.Errorf("a bindings = %+v", a.Resources)
	}
	if r1, _ := l.Resource("r1"); r1.ActiveUsage != 0 {
		t.Errorf("r1 usage = %d after reassign", r1.ActiveUsage)
	}
	if _, err := s.ReassignResource("a", "r1", "r2", false); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("reassign missing binding: got %v, want NOT_FOUND", err)
	}
}

func TestReschedule(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 3)
	add(t, s, "b", 1)
	if _, err := s.AssignResource("a", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FixStartDate("b", day("2025-01-10")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignResource("b", "r", 1, false); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Reschedule("b", day("2025-01-02"), false); !errs.Is(err, errs.ErrCodeInsufficientCapacity) {
		t.Fatalf("unforced reschedule onto a: got %v, want INSUFFICIENT_CAPACITY", err)
	}
	if got := mustTask(t, s, "b").EarliestStart; got != day("2025-01-10") {
		t.Errorf("b start = %v after rollback", got)
	}

	b, err := s.Reschedule("b", day("2025-01-02"), true)
	if err != nil {
		t.Fatal(err)
	}
	if b.EarliestStart != day("2025-01-02") || !b.Resources[0].Forced {
		t.Errorf("b = %v forced=%v", b.EarliestStart, b.Resources[0].Forced)
	}
	if got, _ := l.Load("r", day("2025-01-02")); got != 2 {
		t.Errorf("load = %d, want 2", got)
	}
}

func usageOf(t *testing.T, l *ledger.Ledger, res ledger.ResourceID, project, id string) ledger.UsageRange {
	t.Helper()
	r, _ := l.Resource(res)
	for _, u := range r.Usage {
		if u.OwnedBy(project, id) {
			return u
		}
	}
	t.Fatalf("no booking of %s by %s/%s", res, project, id)
	return ledger.UsageRange{}
}

func TestRescheduleSameSpanUpdatesForced(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "a", 2)
	add(t, s, "b", 2)
	if _, err := s.AssignResource("a", "r", 1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignResource("b", "r", 1, true); err != nil {
		t.Fatal(err)
	}

	a, err := s.Reschedule("a", day("2025-01-01"), true)
	if err != nil {
		t.Fatalf("forced reschedule: %v", err)
	}
	if !a.Resources[0].Forced || a.Resources[0].Start != day("2025-01-01") {
		t.Errorf("binding = %+v", a.Resources[0])
	}
	if u := usageOf(t, l, "r", "p1", "a"); !u.Forced {
		t.Error("ledger booking not marked forced")
	}

	// The same span, unforced, no longer fits next to b's forced booking.
	if _, err := s.Reschedule("a", day("2025-01-01"), false); !errs.Is(err, errs.ErrCodeInsufficientCapacity) {
		t.Fatalf("unforced reschedule: got %v, want INSUFFICIENT_CAPACITY", err)
	}
	if u := usageOf(t, l, "r", "p1", "a"); !u.Forced {
		t.Error("rollback lost the forced booking")
	}
	if r, _ := l.Resource("r"); r.ActiveUsage != 2 {
		t.Errorf("active usage = %d, want 2", r.ActiveUsage)
	}
}

func TestSharedLedgerSameTaskID(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "crane", "equipment", 2)
	p1 := newScheduler(t, "2025-01-01", l)
	p2, err := New("p2", "Other", day("2025-01-01"), l,
		WithLogger(log.New(io.Discard)),
		WithClock(calendar.FixedClock(day("2025-01-01"))),
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []*Scheduler{p1, p2} {
		add(t, s, "A", 3)
		if _, err := s.AssignResource("A", "crane", 1, false); err != nil {
			t.Fatalf("%s: %v", s.Project().ID, err)
		}
	}

	if _, err := p1.ReleaseResource("A", "crane"); err != nil {
		t.Fatal(err)
	}
	r, _ := l.Resource("crane")
	if r.ActiveUsage != 1 || len(r.Usage) != 1 || r.Usage[0].Project != "p2" {
		t.Fatalf("after p1 release: active=%d usage=%+v", r.ActiveUsage, r.Usage)
	}
	if got, _ := l.Load("crane", day("2025-01-02")); got != 1 {
		t.Errorf("load = %d, want 1", got)
	}

	if _, err := p2.SetDuration("A", 5); err != nil {
		t.Fatalf("p2 rebooking: %v", err)
	}
	if u := usageOf(t, l, "crane", "p2", "A"); u.End != day("2025-01-05") {
		t.Errorf("p2 booking ends %v, want 2025-01-05", u.End)
	}
	if _, err := p2.ReleaseResource("A", "crane"); err != nil {
		t.Fatalf("p2 release: %v", err)
	}
	if r.ActiveUsage != 0 {
		t.Errorf("active usage = %d, want 0", r.ActiveUsage)
	}
}

func TestSnapshot(t *testing.T) {
	l := ledger.New()
	addResource(t, l, "r", "crew", 1)
	s := newScheduler(t, "2025-01-01", l)
	add(t, s, "late", 1)
	add(t, s, "first", 3)
	if _, err := s.AddDependency("late", "first", task.FinishToStart); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignResource("first", "r", 1, false); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	var order []task.ID
	for _, tk := range snap.Tasks {
		order = append(order, tk.ID)
	}
	if !slices.Equal(order, []task.ID{"first", "late"}) {
		t.Errorf("snapshot order = %v", order)
	}
	if !slices.Equal(snap.CriticalPath, []task.ID{"first", "late"}) {
		t.Errorf("critical path = %v", snap.CriticalPath)
	}
	if len(snap.Resources) != 1 || snap.Resources[0].ID != "r" {
		t.Errorf("snapshot resources = %v", snap.Resources)
	}
	start, end := snap.Span()
	if start != day("2025-01-01") || end != day("2025-01-04") {
		t.Errorf("span = %v..%v", start, end)
	}

	snap.Tasks[0].Duration = 99
	if mustTask(t, s, "first").Duration != 3 {
		t.Error("snapshot shares task state")
	}
}

type recordingHooks struct {
	rollbacks []string
	recalcs   int
}

func (h *recordingHooks) OnRecalculate(string, int, time.Duration, error) {
	h.recalcs++
}

func (h *recordingHooks) OnRollback(_, op string, _ error) {
	h.rollbacks = append(h.rollbacks, op)
}

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetScheduleHooks(h)
	defer observability.Reset()

	s := newScheduler(t, "2025-01-01", nil)
	add(t, s, "a", 1)
	if _, err := s.SetDuration("a", -1); err == nil {
		t.Fatal("expected error")
	}
	if h.recalcs != 1 {
		t.Errorf("recalculations = %d, want 1", h.recalcs)
	}
	if !slices.Equal(h.rollbacks, []string{"set duration"}) {
		t.Errorf("rollbacks = %v", h.rollbacks)
	}
}
