package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackplan/pkg/calendar"
	"github.com/matzehuels/stackplan/pkg/schedule"
	"github.com/matzehuels/stackplan/pkg/task"
)

// Document is the serialized form of a schedule snapshot.
type Document struct {
	Revision     string             `json:"revision"`
	CreatedAt    time.Time          `json:"created_at"`
	Project      string             `json:"project"`
	Name         string             `json:"name,omitempty"`
	Start        calendar.Date      `json:"start"`
	Finish       calendar.Date      `json:"finish"`
	CriticalPath []string           `json:"critical_path"`
	Tasks        []TaskDocument     `json:"tasks"`
	Resources    []ResourceDocument `json:"resources,omitempty"`
}

// TaskDocument is one task of a Document.
type TaskDocument struct {
	ID             string               `json:"id"`
	Title          string               `json:"title,omitempty"`
	Description    string               `json:"description,omitempty"`
	Duration       int                  `json:"duration"`
	Status         task.Status          `json:"status"`
	EarliestStart  calendar.Date        `json:"earliest_start"`
	EarliestFinish calendar.Date        `json:"earliest_finish"`
	LatestFinish   calendar.Date        `json:"latest_finish"`
	ExecutionDate  calendar.Date        `json:"execution_date"`
	Slack          int                  `json:"slack"`
	ManualStart    bool                 `json:"manual_start,omitempty"`
	Assignees      []string             `json:"assignees,omitempty"`
	Depends        []DependencyDocument `json:"depends,omitempty"`
	Bookings       []BookingDocument    `json:"bookings,omitempty"`
}

// DependencyDocument is a dependency of a TaskDocument.
type DependencyDocument struct {
	Task string              `json:"task"`
	Type task.DependencyType `json:"type"`
}

// BookingDocument is a resource binding of a TaskDocument.
type BookingDocument struct {
	Resource string        `json:"resource"`
	Quantity int           `json:"quantity"`
	Start    calendar.Date `json:"start"`
	End      calendar.Date `json:"end"`
	Forced   bool          `json:"forced,omitempty"`
}

// ResourceDocument is a resource booked by the project.
type ResourceDocument struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	Type             string `json:"type,omitempty"`
	Capacity         int    `json:"capacity"`
	ExclusiveProject string `json:"exclusive_project,omitempty"`
	ActiveUsage      int    `json:"active_usage"`
}

// NewDocument converts a snapshot into a Document with a new revision id.
func NewDocument(snap *schedule.Snapshot) *Document {
	doc := &Document{
		Revision:     uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Project:      string(snap.Project.ID),
		Name:         snap.Project.Name,
		Start:        snap.Project.Start,
		Finish:       snap.Project.EarliestFinish,
		CriticalPath: make([]string, len(snap.CriticalPath)),
		Tasks:        make([]TaskDocument, len(snap.Tasks)),
	}
	for i, id := range snap.CriticalPath {
		doc.CriticalPath[i] = string(id)
	}
	for i, t := range snap.Tasks {
		td := TaskDocument{
			ID:             string(t.ID),
			Title:          t.Title,
			Description:    t.Description,
			Duration:       t.Duration,
			Status:         t.Status,
			EarliestStart:  t.EarliestStart,
			EarliestFinish: t.EarliestFinish,
			LatestFinish:   t.LatestFinish,
			ExecutionDate:  t.ExecutionDate,
			Slack:          t.Slack,
			ManualStart:    t.ManualStart,
			Assignees:      t.Assignees,
		}
		for _, d := range t.Dependencies {
			td.Depends = append(td.Depends, DependencyDocument{Task: string(d.Predecessor), Type: d.Type})
		}
		for _, b := range t.Resources {
			td.Bookings = append(td.Bookings, BookingDocument{
				Resource: string(b.Resource),
				Quantity: b.Quantity,
				Start:    b.Start,
				End:      b.End,
				Forced:   b.Forced,
			})
		}
		doc.Tasks[i] = td
	}
	for _, r := range snap.Resources {
		doc.Resources = append(doc.Resources, ResourceDocument{
			ID:               string(r.ID),
			Name:             r.Name,
			Type:             r.Type,
			Capacity:         r.Capacity,
			ExclusiveProject: r.ExclusiveProject,
			ActiveUsage:      r.ActiveUsage,
		})
	}
	return doc
}

// Task returns the task document with the given id.
func (d *Document) Task(id string) (TaskDocument, bool) {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskDocument{}, false
}

// Load returns the total booked quantity of a resource on day, summed over
// the document's bookings.
func (d *Document) Load(resource string, day calendar.Date) int {
	n := 0
	for _, t := range d.Tasks {
		for _, b := range t.Bookings {
			if b.Resource == resource && !day.Before(b.Start) && !day.After(b.End) {
				n += b.Quantity
			}
		}
	}
	return n
}

// WriteJSON encodes a document as indented JSON.
func WriteJSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &doc, nil
}

// ExportJSON writes a document to a file at path.
func ExportJSON(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(doc, f)
}
