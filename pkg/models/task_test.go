package models

import (
	"testing"
	"time"
)

func TestSlot_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	slot := Slot{Start: base, End: base.Add(time.Hour)}

	tests := []struct {
		name  string
		other Slot
		want  bool
	}{
		{"identical", slot, true},
		{"inside", Slot{Start: base.Add(10 * time.Minute), End: base.Add(20 * time.Minute)}, true},
		{"straddles end", Slot{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}, true},
		{"touches end", Slot{Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)}, false},
		{"before", Slot{Start: base.Add(-2 * time.Hour), End: base.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slot.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(slot); got != tt.want {
				t.Errorf("reverse Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubtask_Estimate(t *testing.T) {
	task := Subtask{EstimatedMinutes: 90}
	if got := task.Estimate(); got != 90*time.Minute {
		t.Errorf("Estimate() = %v, want %v", got, 90*time.Minute)
	}
	if task.IsScheduled() {
		t.Error("new subtask should not be scheduled")
	}

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task.Scheduled = &Slot{Start: start, End: start.Add(task.Estimate())}
	if !task.IsScheduled() {
		t.Error("subtask with a slot should be scheduled")
	}
	if task.Scheduled.Duration() != task.Estimate() {
		t.Errorf("slot duration = %v, want %v", task.Scheduled.Duration(), task.Estimate())
	}
}
