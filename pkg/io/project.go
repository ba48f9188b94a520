package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/stackplan/pkg/calendar"
	errs "github.com/matzehuels/stackplan/pkg/errors"
	"github.com/matzehuels/stackplan/pkg/ledger"
	"github.com/matzehuels/stackplan/pkg/schedule"
	"github.com/matzehuels/stackplan/pkg/task"
)

// Format is a project file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("cannot tell project format of %s (want .toml or .json)", path)
	}
}

// Project is the decoded content of a project file.
type Project struct {
	ID        string     `toml:"id" json:"id"`
	Name      string     `toml:"name" json:"name"`
	Start     fileDate   `toml:"start" json:"start"`
	Resources []Resource `toml:"resources" json:"resources"`
	Tasks     []Task     `toml:"tasks" json:"tasks"`
}

// Resource is a resource entry of a project file.
type Resource struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Type        string `toml:"type" json:"type"`
	Description string `toml:"description" json:"description"`
	Capacity    int    `toml:"capacity" json:"capacity"`
	Exclusive   bool   `toml:"exclusive" json:"exclusive"`
}

// Task is a task entry of a project file.
type Task struct {
	ID          string       `toml:"id" json:"id"`
	Title       string       `toml:"title" json:"title"`
	Description string       `toml:"description" json:"description"`
	Duration    int          `toml:"duration" json:"duration"`
	Start       fileDate     `toml:"start" json:"start"`
	Status      string       `toml:"status" json:"status"`
	Started     fileDate     `toml:"started" json:"started"`
	Finished    fileDate     `toml:"finished" json:"finished"`
	Assignees   []string     `toml:"assignees" json:"assignees"`
	Depends     []Dependency `toml:"depends" json:"depends"`
	Uses        []Usage      `toml:"uses" json:"uses"`
}

// Dependency is a dependency entry of a task.
type Dependency struct {
	Task string `toml:"task" json:"task"`
	Type string `toml:"type" json:"type"`
}

// Usage is a resource booking entry of a task.
type Usage struct {
	Resource string `toml:"resource" json:"resource"`
	Quantity int    `toml:"quantity" json:"quantity"`
	Forced   bool   `toml:"forced" json:"forced"`
}

// fileDate accepts TOML local dates and YYYY-MM-DD strings.
type fileDate struct{ calendar.Date }

// UnmarshalTOML implements toml.Unmarshaler.
func (d *fileDate) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case time.Time:
		d.Date = calendar.FromTime(v)
		return nil
	case string:
		return d.Date.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("date must be a local date or YYYY-MM-DD string, got %T", v)
	}
}

// Decode reads a project file in the given format.
func Decode(r io.Reader, format Format) (*Project, error) {
	var p Project
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported project format %q", format)
	}
	return &p, nil
}

// Load builds a scheduler from a project. Resources are registered in l
// (a fresh ledger if nil) and exclusive ones are bound to the project.
//
// Tasks are added first, in file order, then dependencies, fixed starts and
// bookings, each through the scheduler so every step is validated and
// recalculated.
func Load(p *Project, l *ledger.Ledger, opts ...schedule.Option) (*schedule.Scheduler, error) {
	if p.Start.IsZero() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "project %q: start date is required", p.ID)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if l == nil {
		l = ledger.New()
	}

	s, err := schedule.New(schedule.ProjectID(p.ID), p.Name, p.Start.Date, l, opts...)
	if err != nil {
		return nil, err
	}

	for i := range p.Resources {
		r := &p.Resources[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		res := ledger.Resource{
			ID:          ledger.ResourceID(r.ID),
			Name:        r.Name,
			Type:        r.Type,
			Description: r.Description,
			Capacity:    r.Capacity,
		}
		if err := l.AddResource(res); err != nil {
			return nil, fmt.Errorf("resource %s: %w", r.ID, err)
		}
		if r.Exclusive {
			if err := s.AssociateResource(res.ID); err != nil {
				return nil, fmt.Errorf("resource %s: %w", r.ID, err)
			}
		}
	}

	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		_, err := s.AddTask(schedule.TaskInput{
			ID:          task.ID(t.ID),
			Title:       t.Title,
			Description: t.Description,
			Duration:    t.Duration,
			Assignees:   t.Assignees,
		})
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
	}

	for _, t := range p.Tasks {
		for _, d := range t.Depends {
			typ := task.FinishToStart
			if d.Type != "" {
				parsed, err := task.ParseDependencyType(strings.ToUpper(d.Type))
				if err != nil {
					return nil, fmt.Errorf("task %s: %w", t.ID, err)
				}
				typ = parsed
			}
			if _, err := s.AddDependency(task.ID(t.ID), task.ID(d.Task), typ); err != nil {
				return nil, fmt.Errorf("task %s: dependency on %s: %w", t.ID, d.Task, err)
			}
		}
	}

	// Fixed starts follow the dependency order so that each start is
	// checked against predecessors that are already in place.
	order, err := s.Graph().TopologicalOrder()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Task, len(p.Tasks))
	for i := range p.Tasks {
		byID[p.Tasks[i].ID] = &p.Tasks[i]
	}
	for _, t := range order {
		ft := byID[string(t.ID)]
		if ft.Start.IsZero() {
			continue
		}
		if _, err := s.FixStartDate(t.ID, ft.Start.Date); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
	}

	for _, t := range p.Tasks {
		for _, u := range t.Uses {
			q := u.Quantity
			if q == 0 {
				q = 1
			}
			if _, err := s.AssignResource(task.ID(t.ID), ledger.ResourceID(u.Resource), q, u.Forced); err != nil {
				return nil, fmt.Errorf("task %s: resource %s: %w", t.ID, u.Resource, err)
			}
		}
	}

	// Statuses go last: completing a task releases its bookings, and
	// predecessors must be started before their dependents.
	for _, t := range order {
		if err := applyStatus(s, byID[string(t.ID)]); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
	}
	return s, nil
}

// applyStatus walks a task through the state machine to the status in its
// file entry. Started and Finished date the transitions; unset dates mean
// the scheduler clock's today. Pending and blocked are derived from the
// dependencies and need no transition.
func applyStatus(s *schedule.Scheduler, ft *Task) error {
	status := ft.Status
	switch {
	case status != "":
	case !ft.Finished.IsZero():
		status = task.Completed.String()
	case !ft.Started.IsZero():
		status = task.InProgress.String()
	default:
		return nil
	}
	to, err := task.ParseStatus(status)
	if err != nil {
		return err
	}
	if to != task.InProgress && to != task.Completed {
		return nil
	}
	if !ft.Finished.IsZero() && to != task.Completed {
		return errs.New(errs.ErrCodeInvalidInput, "finished date set on a %s task", to)
	}

	id := task.ID(ft.ID)
	today := s.Clock().Today()
	on := func(d fileDate) calendar.Date {
		if d.IsZero() {
			return today
		}
		return d.Date
	}
	if _, err := s.ChangeStatusOn(id, task.InProgress, on(ft.Started)); err != nil {
		return err
	}
	if to == task.Completed {
		if _, err := s.ChangeStatusOn(id, task.Completed, on(ft.Finished)); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a project and loads it.
func Read(r io.Reader, format Format, l *ledger.Ledger, opts ...schedule.Option) (*schedule.Scheduler, error) {
	p, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return Load(p, l, opts...)
}

// ImportFile reads the project file at path, choosing the format from its
// extension.
func ImportFile(path string, l *ledger.Ledger, opts ...schedule.Option) (*schedule.Scheduler, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s, err := Read(bytes.NewReader(data), format, l, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
