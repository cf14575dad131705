package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Well-known task fields. Any other field a caller supplies is kept as-is.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
	FieldCreatedAt   = "createdAt"
)

// DateLayout is the format of the dueDate field.
const DateLayout = "2006-01-02"

// Task is a single task record. Fields are held as raw JSON so that
// attributes this package knows nothing about survive a round trip.
type Task map[string]json.RawMessage

// NewTask returns a task carrying only the given id.
func NewTask(id string) Task {
	t := Task{}
	t.SetString(FieldID, id)
	return t
}

// ID returns the task identifier, or "" if it is missing or not a string.
func (t Task) ID() string {
	return t.String(FieldID)
}

// Status returns the task status.
func (t Task) Status() Status {
	return Status(t.String(FieldStatus))
}

// Priority returns the task priority.
func (t Task) Priority() Priority {
	return Priority(t.String(FieldPriority))
}

// Title returns the task title.
func (t Task) Title() string {
	return t.String(FieldTitle)
}

// Has reports whether the field is present.
func (t Task) Has(field string) bool {
	_, ok := t[field]
	return ok
}

// String decodes a string field. Missing or non-string fields yield "".
func (t Task) String(field string) string {
	raw, ok := t[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SetString stores a string field.
func (t Task) SetString(field, value string) {
	// Marshalling a string cannot fail.
	raw, _ := json.Marshal(value)
	t[field] = raw
}

// Set stores any JSON-encodable value under field.
func (t Task) Set(field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	t[field] = raw
	return nil
}

// Merge returns a new task with the fields of updates laid over t.
// Fields absent from updates are retained.
func (t Task) Merge(updates Task) Task {
	out := make(Task, len(t)+len(updates))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range updates {
		out[k] = v
	}
	return out
}

// DueDate parses the dueDate field.
func (t Task) DueDate() (time.Time, bool) {
	s := t.String(FieldDueDate)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsOverdue returns true if the task has a due date before today and is not done.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status() == StatusDone {
		return false
	}
	due, ok := t.DueDate()
	if !ok {
		return false
	}
	return due.Format(DateLayout) < now.Format(DateLayout)
}

// Validate checks a complete task before it is added.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID()) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(t.Title()) == "" {
		return errors.New("title is required")
	}
	return t.ValidateFields()
}

// ValidateFields checks only the fields that are present, for partial updates.
func (t Task) ValidateFields() error {
	if t.Has(FieldStatus) && !t.Status().Valid() {
		return errors.New("status must be 'todo', 'in-progress', or 'done'")
	}
	if t.Has(FieldPriority) && !t.Priority().Valid() {
		return errors.New("priority must be 'high', 'medium', or 'low'")
	}
	if t.Has(FieldDueDate) && t.String(FieldDueDate) != "" {
		if _, ok := t.DueDate(); !ok {
			return errors.New("dueDate must be formatted as YYYY-MM-DD")
		}
	}
	return nil
}
