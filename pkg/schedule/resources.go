package schedule

import (
	"slices"

	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/ledger"
	"github.com/matzehuels/stackplan/pkg/task"
)

// AssignResource books quantity units of a resource for the task's span.
// Unless forced, the booking must fit the resource's capacity
// (INSUFFICIENT_CAPACITY). A resource exclusive to another project is
// refused with RESOURCE_RESERVED.
func (s *Scheduler) AssignResource(id task.ID, res ledger.ResourceID, quantity int, forced bool) (*task.Task, error) {
	return s.mutateTask("assign resource", id, func(t *task.Task) error {
		return s.bind(t, res, quantity, forced)
	}, "resource", res, "quantity", quantity, "forced", forced)
}

func (s *Scheduler) bind(t *task.Task, res ledger.ResourceID, quantity int, forced bool) error {
	if t.Status == task.Completed {
		return errs.New(errs.ErrCodeInvalidInput, "task %q is completed; it cannot take resources", t.ID)
	}
	if _, ok := binding(t, res); ok {
		return errs.New(errs.ErrCodeDuplicateID, "task %q already uses resource %q", t.ID, res)
	}
	if err := s.usable(res); err != nil {
		return err
	}
	u, err := s.ledger.Assign(res, string(s.project.ID), string(t.ID), t.EarliestStart, t.EarliestFinish, quantity, forced)
	if err != nil {
		return err
	}
	t.Resources = append(t.Resources, task.Binding{
		Resource: res,
		Quantity: quantity,
		Start:    u.Start,
		End:      u.End,
		Forced:   forced,
	})
	return nil
}

// ReleaseResource releases the task's booking of a resource.
func (s *Scheduler) ReleaseResource(id task.ID, res ledger.ResourceID) (*task.Task, error) {
	return s.mutateTask("release resource", id, func(t *task.Task) error {
		return s.unbind(t, res)
	}, "resource", res)
}

func (s *Scheduler) unbind(t *task.Task, res ledger.ResourceID) error {
	i, ok := binding(t, res)
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "task %q does not use resource %q", t.ID, res)
	}
	b := t.Resources[i]
	if err := s.ledger.Release(res, string(s.project.ID), string(t.ID), b.Start, b.End, b.Quantity); err != nil {
		return err
	}
	t.Resources = slices.Delete(t.Resources, i, i+1)
	return nil
}

// ReassignResource moves the task's booking from one resource to another
// with the same quantity. Unless forced, the target must have room.
func (s *Scheduler) ReassignResource(id task.ID, from, to ledger.ResourceID, forced bool) (*task.Task, error) {
	return s.mutateTask("reassign resource", id, func(t *task.Task) error {
		i, ok := binding(t, from)
		if !ok {
			return errs.New(errs.ErrCodeNotFound, "task %q does not use resource %q", id, from)
		}
		quantity := t.Resources[i].Quantity
		if err := s.unbind(t, from); err != nil {
			return err
		}
		return s.bind(t, to, quantity, forced)
	}, "from", from, "to", to, "forced", forced)
}

// AssociateResource makes a resource exclusive to this project. A resource
// can be made exclusive once (ALREADY_EXCLUSIVE).
func (s *Scheduler) AssociateResource(res ledger.ResourceID) error {
	return s.mutate("associate resource", func() error {
		return s.ledger.AssociateWithProject(res, string(s.project.ID))
	}, "resource", res)
}

// FindAlternativeResources lists resources of the same type as res that
// could take quantity units over the task's span, best first.
func (s *Scheduler) FindAlternativeResources(id task.ID, res ledger.ResourceID, quantity int) ([]ledger.Candidate, error) {
	t, err := s.find(id)
	if err != nil {
		return nil, err
	}
	r, ok := s.ledger.Resource(res)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "resource %q not found", res)
	}
	return s.ledger.FindAlternatives(r.Type, t.EarliestStart, t.EarliestFinish, quantity, res, string(s.project.ID))
}

func (s *Scheduler) usable(res ledger.ResourceID) error {
	r, ok := s.ledger.Resource(res)
	if !ok {
		return errs.New(errs.ErrCodeNotFound, "resource %q not found", res)
	}
	if !r.AvailableTo(string(s.project.ID)) {
		return errs.New(errs.ErrCodeResourceReserved, "resource %q is exclusive to project %q", res, r.ExclusiveProject)
	}
	return nil
}

func binding(t *task.Task, res ledger.ResourceID) (int, bool) {
	i := slices.IndexFunc(t.Resources, func(b task.Binding) bool { return b.Resource == res })
	return i, i >= 0
}
