// Package stats summarizes a task collection for the statistics view.
package stats

import (
	"math"
	"time"

	"taskboard/internal/models"
)

// StatusCount is the number of tasks in one status.
type StatusCount struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

// PriorityCount is the number of tasks with one priority.
type PriorityCount struct {
	Priority models.Priority `json:"priority"`
	Label    string          `json:"label"`
	Color    string          `json:"color"`
	Count    int             `json:"count"`
}

// Summary holds aggregate figures for a task collection.
type Summary struct {
	Total      int             `json:"total"`
	ByStatus   []StatusCount   `json:"byStatus"`
	ByPriority []PriorityCount `json:"byPriority"`
	// Tasks whose status or priority is outside the vocabularies.
	UnknownStatus   int `json:"unknownStatus"`
	UnknownPriority int `json:"unknownPriority"`
	Completed       int `json:"completed"`
	// CompletionRate is the percentage of done tasks, rounded to one decimal.
	CompletionRate float64 `json:"completionRate"`
	Overdue        int     `json:"overdue"`
}

// Summarize computes a Summary. now decides which tasks are overdue.
func Summarize(tasks []models.Task, now time.Time) Summary {
	statuses := models.Statuses()
	priorities := models.Priorities()

	s := Summary{
		Total:      len(tasks),
		ByStatus:   make([]StatusCount, len(statuses)),
		ByPriority: make([]PriorityCount, len(priorities)),
	}

	statusIndex := make(map[models.Status]int, len(statuses))
	for i, info := range statuses {
		s.ByStatus[i] = StatusCount{Status: info.Value, Label: info.Label}
		statusIndex[info.Value] = i
	}
	priorityIndex := make(map[models.Priority]int, len(priorities))
	for i, info := range priorities {
		s.ByPriority[i] = PriorityCount{Priority: info.Value, Label: info.Label, Color: info.Color}
		priorityIndex[info.Value] = i
	}

	for _, task := range tasks {
		if i, ok := statusIndex[task.Status()]; ok {
			s.ByStatus[i].Count++
		} else {
			s.UnknownStatus++
		}
		if i, ok := priorityIndex[task.Priority()]; ok {
			s.ByPriority[i].Count++
		} else {
			s.UnknownPriority++
		}
		if task.Status() == models.StatusDone {
			s.Completed++
		}
		if task.IsOverdue(now) {
			s.Overdue++
		}
	}

	if s.Total > 0 {
		rate := float64(s.Completed) / float64(s.Total) * 100
		s.CompletionRate = math.Round(rate*10) / 10
	}

	return s
}
