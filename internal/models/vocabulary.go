package models

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// StatusInfo describes a status for display.
type StatusInfo struct {
	Value Status `json:"value"`
	Label string `json:"label"`
}

var statusTable = [...]StatusInfo{
	{Value: StatusTodo, Label: "To Do"},
	{Value: StatusInProgress, Label: "In Progress"},
	{Value: StatusDone, Label: "Done"},
}

// Statuses returns the status vocabulary in display order.
func Statuses() []StatusInfo {
	out := make([]StatusInfo, len(statusTable))
	copy(out, statusTable[:])
	return out
}

// Valid reports whether s belongs to the status vocabulary.
func (s Status) Valid() bool {
	for _, info := range statusTable {
		if info.Value == s {
			return true
		}
	}
	return false
}

// Label returns the human-readable label, or the raw value for unknown statuses.
func (s Status) Label() string {
	for _, info := range statusTable {
		if info.Value == s {
			return info.Label
		}
	}
	return string(s)
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityInfo describes a priority for display.
type PriorityInfo struct {
	Value Priority `json:"value"`
	Label string   `json:"label"`
	Color string   `json:"color"`
}

var priorityTable = [...]PriorityInfo{
	{Value: PriorityHigh, Label: "High", Color: "#f56c6c"},
	{Value: PriorityMedium, Label: "Medium", Color: "#e6a23c"},
	{Value: PriorityLow, Label: "Low", Color: "#67c23a"},
}

// Priorities returns the priority vocabulary from most to least urgent.
func Priorities() []PriorityInfo {
	out := make([]PriorityInfo, len(priorityTable))
	copy(out, priorityTable[:])
	return out
}

func (p Priority) info() (PriorityInfo, bool) {
	for _, info := range priorityTable {
		if info.Value == p {
			return info, true
		}
	}
	return PriorityInfo{}, false
}

// Valid reports whether p belongs to the priority vocabulary.
func (p Priority) Valid() bool {
	_, ok := p.info()
	return ok
}

// Label returns the human-readable label, or the raw value for unknown priorities.
func (p Priority) Label() string {
	if info, ok := p.info(); ok {
		return info.Label
	}
	return string(p)
}

// Color returns the display color as a hex RGB triplet. Unknown priorities are grey.
func (p Priority) Color() string {
	if info, ok := p.info(); ok {
		return info.Color
	}
	return "#909399"
}

// Order returns a numeric value for sorting by priority.
// Lower numbers indicate higher priority.
func (p Priority) Order() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 99
	}
}
