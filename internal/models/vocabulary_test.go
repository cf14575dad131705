package models

import "testing"

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
		label  string
	}{
		{StatusTodo, true, "To Do"},
		{StatusInProgress, true, "In Progress"},
		{StatusDone, true, "Done"},
		{Status("archived"), false, "archived"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Valid: expected %v, got %v", tt.valid, got)
			}
			if got := tt.status.Label(); got != tt.label {
				t.Errorf("Label: expected %q, got %q", tt.label, got)
			}
		})
	}
}

func TestPriorityTable(t *testing.T) {
	tests := []struct {
		priority Priority
		label    string
		color    string
		order    int
	}{
		{PriorityHigh, "High", "#f56c6c", 1},
		{PriorityMedium, "Medium", "#e6a23c", 2},
		{PriorityLow, "Low", "#67c23a", 3},
		{Priority("unknown"), "unknown", "#909399", 99},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.Label(); got != tt.label {
				t.Errorf("Label: expected %q, got %q", tt.label, got)
			}
			if got := tt.priority.Color(); got != tt.color {
				t.Errorf("Color: expected %q, got %q", tt.color, got)
			}
			if got := tt.priority.Order(); got != tt.order {
				t.Errorf("Order: expected %d, got %d", tt.order, got)
			}
		})
	}
}

func TestVocabularyTablesAreCopies(t *testing.T) {
	statuses := Statuses()
	statuses[0].Label = "changed"
	if Statuses()[0].Label != "To Do" {
		t.Error("expected status table to be unaffected by caller mutation")
	}

	priorities := Priorities()
	priorities[0].Color = "#000000"
	if Priorities()[0].Color != "#f56c6c" {
		t.Error("expected priority table to be unaffected by caller mutation")
	}
}
