package ledger

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stackplan/pkg/calendar"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/observability"
)

// ResourceID identifies a resource.
type ResourceID string

// UsageRange is one booking of a resource by a task over [Start, End].
// Ranges are created by Assign and destroyed by Release, never edited.
//
// Task IDs are only unique within a project, so a booking is owned by the
// pair (Project, Task).
type UsageRange struct {
	Resource ResourceID
	Start    calendar.Date
	End      calendar.Date // inclusive, never before Start
	Quantity int
	Project  string
	Task     string
	Forced   bool
}

// OwnedBy reports whether the range belongs to task of project.
func (u UsageRange) OwnedBy(project, task string) bool {
	return u.Project == project && u.Task == task
}

// Covers reports whether the range includes day.
func (u UsageRange) Covers(day calendar.Date) bool {
	return !day.Before(u.Start) && !day.After(u.End)
}

// Resource is a shared asset with a concurrent-usage capacity.
type Resource struct {
	ID          ResourceID
	Name        string
	Type        string
	Description string
	Capacity    int

	// ExclusiveProject is the project the resource is bound to, or "" if shared.
	ExclusiveProject string

	ActiveUsage int
	Usage       []UsageRange
}

// Load returns the total booked quantity on day.
func (r *Resource) Load(day calendar.Date) int {
	total := 0
	for _, u := range r.Usage {
		if u.Covers(day) {
			total += u.Quantity
		}
	}
	return total
}

// PeakLoad returns the highest daily load over [start, end].
func (r *Resource) PeakLoad(start, end calendar.Date) int {
	peak := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if l := r.Load(d); l > peak {
			peak = l
		}
	}
	return peak
}

// CheckAvailability reports whether quantity more units fit on every day of [start, end].
func (r *Resource) CheckAvailability(start, end calendar.Date, quantity int) bool {
	for d := start; !d.After(end); d = d.AddDays(1) {
		if r.Load(d)+quantity > r.Capacity {
			return false
		}
	}
	return true
}

// AvailableTo reports whether project may book the resource.
func (r *Resource) AvailableTo(project string) bool {
	return r.ExclusiveProject == "" || r.ExclusiveProject == project
}

func (r *Resource) clone() *Resource {
	c := *r
	c.Usage = slices.Clone(r.Usage)
	return &c
}

// Ledger holds resources and their bookings.
//
// The zero value is not usable - use New.
type Ledger struct {
	resources map[ResourceID]*Resource
	order     []ResourceID
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{resources: make(map[ResourceID]*Resource)}
}

// AddResource registers a resource. The resource's usage must be empty.
func (l *Ledger) AddResource(r Resource) error {
	if err := errs.ValidateID("resource", string(r.ID)); err != nil {
		return err
	}
	if err := errs.ValidateCapacity(r.Capacity); err != nil {
		return err
	}
	if _, exists := l.resources[r.ID]; exists {
		return errs.New(errs.ErrCodeDuplicateID, "resource %q already exists", r.ID)
	}
	r.ActiveUsage = 0
	r.Usage = nil
	l.resources[r.ID] = &r
	l.order = append(l.order, r.ID)
	return nil
}

// Resource returns the resource with the given ID. The returned value is
// owned by the ledger and must not be modified.
func (l *Ledger) Resource(id ResourceID) (*Resource, bool) {
	r, ok := l.resources[id]
	return r, ok
}

// Resources returns all resources in registration order.
func (l *Ledger) Resources() []*Resource {
	out := make([]*Resource, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.resources[id])
	}
	return out
}

// Len returns the number of resources.
func (l *Ledger) Len() int { return len(l.order) }

func (l *Ledger) lookup(id ResourceID) (*Resource, error) {
	r, ok := l.resources[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "resource %q not found", id)
	}
	return r, nil
}

func validateSpan(start, end calendar.Date, quantity int) error {
	if start.IsZero() || end.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "usage span requires start and end dates")
	}
	if end.Before(start) {
		return errs.New(errs.ErrCodeInvalidInput, "usage end %s is before start %s", end, start)
	}
	return errs.ValidateQuantity(quantity)
}

// CheckAvailability reports whether quantity units of the resource are free
// on every day of [start, end].
func (l *Ledger) CheckAvailability(id ResourceID, start, end calendar.Date, quantity int) (bool, error) {
	r, err := l.lookup(id)
	if err != nil {
		return false, err
	}
	if err := validateSpan(start, end, quantity); err != nil {
		return false, err
	}
	return r.CheckAvailability(start, end, quantity), nil
}

// Load returns the booked quantity of the resource on day.
func (l *Ledger) Load(id ResourceID, day calendar.Date) (int, error) {
	r, err := l.lookup(id)
	if err != nil {
		return 0, err
	}
	return r.Load(day), nil
}

// Assign books quantity units of the resource for task of project over
// [start, end]. Unless forced, the booking must fit within capacity on
// every day.
func (l *Ledger) Assign(id ResourceID, project, task string, start, end calendar.Date, quantity int, forced bool) (UsageRange, error) {
	r, err := l.lookup(id)
	if err != nil {
		return UsageRange{}, err
	}
	if err := validateSpan(start, end, quantity); err != nil {
		return UsageRange{}, err
	}
	if !forced && !r.CheckAvailability(start, end, quantity) {
		observability.Ledger().OnCapacityRejected(string(id), task, quantity)
		return UsageRange{}, errs.New(errs.ErrCodeInsufficientCapacity,
			"resource %q cannot take %d more between %s and %s (capacity %d, peak load %d)",
			id, quantity, start, end, r.Capacity, r.PeakLoad(start, end))
	}

	u := UsageRange{
		Resource: id,
		Start:    start,
		End:      end,
		Quantity: quantity,
		Project:  project,
		Task:     task,
		Forced:   forced,
	}
	r.Usage = append(r.Usage, u)
	r.ActiveUsage++
	observability.Ledger().OnAssign(string(id), task, quantity, forced)
	return u, nil
}

// Release removes the bookings of task of project on the resource matching
// [start, end] and quantity. Bookings of other projects are never touched. It fails with NEGATIVE_USAGE_COUNT when nothing matches or
// the usage counter would go negative; the ledger is unchanged in that case.
func (l *Ledger) Release(id ResourceID, project, task string, start, end calendar.Date, quantity int) error {
	r, err := l.lookup(id)
	if err != nil {
		return err
	}

	match := func(u UsageRange) bool {
		return u.OwnedBy(project, task) && u.Start == start && u.End == end && u.Quantity == quantity
	}
	n := 0
	for _, u := range r.Usage {
		if match(u) {
			n++
		}
	}
	if n == 0 || r.ActiveUsage-n < 0 {
		return errs.New(errs.ErrCodeNegativeUsageCount,
			"release of %d x %q for task %q of project %q (%s..%s) has no matching booking (active usage %d)",
			quantity, id, task, project, start, end, r.ActiveUsage)
	}

	r.Usage = slices.DeleteFunc(r.Usage, match)
	r.ActiveUsage -= n
	observability.Ledger().OnRelease(string(id), task, quantity)
	return nil
}

// AssociateWithProject binds the resource exclusively to project.
// A resource can be bound once; the binding cannot be cleared.
func (l *Ledger) AssociateWithProject(id ResourceID, project string) error {
	r, err := l.lookup(id)
	if err != nil {
		return err
	}
	if err := errs.ValidateID("project", project); err != nil {
		return err
	}
	if r.ExclusiveProject != "" {
		return errs.New(errs.ErrCodeAlreadyExclusive, "resource %q is already exclusive to project %q", id, r.ExclusiveProject)
	}
	r.ExclusiveProject = project
	return nil
}

// Candidate is a resource that can take a request, with the capacity left
// over on its busiest day in the requested span.
type Candidate struct {
	Resource *Resource
	Spare    int
}

// FindAlternatives lists resources of type typ, other than exclude and
// usable by project, that can take quantity units over [start, end].
// Candidates are ranked by spare capacity (most first), then by ID.
func (l *Ledger) FindAlternatives(typ string, start, end calendar.Date, quantity int, exclude ResourceID, project string) ([]Candidate, error) {
	if err := validateSpan(start, end, quantity); err != nil {
		return nil, err
	}
	var out []Candidate
	for _, id := range l.order {
		r := l.resources[id]
		if id == exclude || r.Type != typ || !r.AvailableTo(project) {
			continue
		}
		spare := r.Capacity - r.PeakLoad(start, end)
		if spare < quantity {
			continue
		}
		out = append(out, Candidate{Resource: r, Spare: spare})
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Spare, a.Spare); c != 0 {
			return c
		}
		return cmp.Compare(a.Resource.ID, b.Resource.ID)
	})
	return out, nil
}

// Checkpoint is a saved copy of a ledger's state.
type Checkpoint struct {
	resources map[ResourceID]*Resource
	order     []ResourceID
}

// Checkpoint saves the full ledger state for a later Restore.
func (l *Ledger) Checkpoint() Checkpoint {
	cp := Checkpoint{
		resources: make(map[ResourceID]*Resource, len(l.resources)),
		order:     slices.Clone(l.order),
	}
	for id, r := range l.resources {
		cp.resources[id] = r.clone()
	}
	return cp
}

// Restore resets the ledger to a checkpoint. Pointers previously returned
// by Resource remain valid and see the restored state.
func (l *Ledger) Restore(cp Checkpoint) {
	for id, saved := range cp.resources {
		if r, ok := l.resources[id]; ok {
			*r = *saved.clone()
		} else {
			l.resources[id] = saved.clone()
		}
	}
	for id := range l.resources {
		if _, ok := cp.resources[id]; !ok {
			delete(l.resources, id)
		}
	}
	l.order = slices.Clone(cp.order)
}
