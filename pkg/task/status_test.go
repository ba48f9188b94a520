package task

import (
	"testing"

	errs "github.com/matzehuels/stackplan/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Pending, Pending, true},
		{Pending, Blocked, true},
		{Blocked, Pending, true},
		{Blocked, Blocked, true},
		{Pending, InProgress, true},
		{Blocked, InProgress, true},
		{InProgress, Completed, true},

		{Pending, Completed, false},
		{Blocked, Completed, false},
		{InProgress, Pending, false},
		{InProgress, Blocked, false},
		{InProgress, InProgress, false},
		{Completed, Pending, false},
		{Completed, Blocked, false},
		{Completed, InProgress, false},
		{Completed, Completed, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionInProgress(t *testing.T) {
	tk := mustNew(t, "a", 3)
	if err := Transition(tk, InProgress, day("2025-01-10")); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if tk.Status != InProgress {
		t.Errorf("Status = %s", tk.Status)
	}
	if tk.EarliestStart != day("2025-01-10") || tk.EarliestFinish != day("2025-01-12") {
		t.Errorf("dates = %s..%s, want 2025-01-10..2025-01-12", tk.EarliestStart, tk.EarliestFinish)
	}
	if !tk.Anchored() {
		t.Error("started task should be anchored")
	}
}

func TestTransitionCompleted(t *testing.T) {
	tk := mustNew(t, "a", 3)
	tk.Slack = 4
	if err := Transition(tk, InProgress, day("2025-01-10")); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := Transition(tk, Completed, day("2025-01-16")); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if tk.ExecutionDate != day("2025-01-16") || tk.EarliestFinish != day("2025-01-16") {
		t.Errorf("ExecutionDate=%s EarliestFinish=%s, want 2025-01-16", tk.ExecutionDate, tk.EarliestFinish)
	}
	if tk.Duration != 7 {
		t.Errorf("Duration = %d, want 7", tk.Duration)
	}
	if tk.Slack != 0 {
		t.Errorf("Slack = %d, want 0", tk.Slack)
	}
	if FinishFor(tk.EarliestStart, tk.Duration) != tk.EarliestFinish {
		t.Error("finish invariant broken after completion")
	}
}

func TestTransitionCompletedSameDay(t *testing.T) {
	tk := mustNew(t, "a", 3)
	_ = Transition(tk, InProgress, day("2025-01-10"))
	if err := Transition(tk, Completed, day("2025-01-10")); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if tk.Duration != 1 {
		t.Errorf("Duration = %d, want 1", tk.Duration)
	}
}

func TestTransitionFromCompletedRejected(t *testing.T) {
	tk := mustNew(t, "a", 3)
	_ = Transition(tk, InProgress, day("2025-01-10"))
	_ = Transition(tk, Completed, day("2025-01-11"))
	before := *tk

	for _, to := range []Status{Pending, InProgress, Blocked} {
		err := Transition(tk, to, day("2025-01-20"))
		if !errs.Is(err, errs.ErrCodeInvalidTransition) {
			t.Errorf("Completed -> %s: err = %v, want INVALID_TRANSITION", to, err)
		}
		if tk.Status != Completed || tk.EarliestFinish != before.EarliestFinish {
			t.Errorf("rejected transition mutated the task: %+v", tk)
		}
	}
}

func TestReconcile(t *testing.T) {
	y := mustNew(t, "y", 2)
	s := mustNew(t, "s", 2)
	x := mustNew(t, "x", 1)
	x.Dependencies = []Dependency{{Type: FinishToStart, Predecessor: "y"}}

	tasks := map[ID]*Task{"x": x, "y": y, "s": s}
	lookup := func(id ID) *Task { return tasks[id] }

	if !Reconcile(x, lookup) || x.Status != Blocked {
		t.Fatalf("x should become blocked, got %s", x.Status)
	}
	if Reconcile(x, lookup) {
		t.Error("second reconcile should be a no-op")
	}

	_ = Transition(y, InProgress, day("2025-01-02"))
	Reconcile(x, lookup)
	if x.Status != Blocked {
		t.Errorf("FS predecessor in progress should keep x blocked, got %s", x.Status)
	}

	_ = Transition(y, Completed, day("2025-01-03"))
	if !Reconcile(x, lookup) || x.Status != Pending {
		t.Errorf("x should become pending, got %s", x.Status)
	}

	x.Dependencies = append(x.Dependencies, Dependency{Type: StartToStart, Predecessor: "s"})
	Reconcile(x, lookup)
	if x.Status != Blocked {
		t.Errorf("SS predecessor pending should block x, got %s", x.Status)
	}
	_ = Transition(s, InProgress, day("2025-01-03"))
	Reconcile(x, lookup)
	if x.Status != Pending {
		t.Errorf("SS predecessor in progress should unblock x, got %s", x.Status)
	}
}

func TestReconcileIgnoresStartedTasks(t *testing.T) {
	x := mustNew(t, "x", 1)
	x.Dependencies = []Dependency{{Type: FinishToStart, Predecessor: "missing"}}
	_ = Transition(x, InProgress, day("2025-01-02"))

	if Reconcile(x, func(ID) *Task { return nil }) {
		t.Error("reconcile must not touch an in-progress task")
	}
}

func TestCanProceedEmpty(t *testing.T) {
	x := mustNew(t, "x", 1)
	if !CanProceed(x, func(ID) *Task { return nil }) {
		t.Error("a task without dependencies can always proceed")
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"pending":     Pending,
		"Blocked":     Blocked,
		"in_progress": InProgress,
		"in-progress": InProgress,
		"InProgress":  InProgress,
		"completed":   Completed,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Error("expected error for unknown status")
	}
}
