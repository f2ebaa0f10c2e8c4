package decompose

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

func TestTasksPerPart(t *testing.T) {
	tests := []struct {
		parts   int
		members int
		want    int
	}{
		{1, 1, 2},
		// Small teams get two subtasks per member rather than the full budget of 8.
		{1, 2, 4},
		{1, 3, 6},
		{2, 3, 4},
		{1, 5, 8},
		{2, 2, 4},
		{3, 4, 2},
		{8, 4, 2},
		{20, 4, 2},
	}

	for _, tt := range tests {
		if got := TasksPerPart(tt.parts, tt.members); got != tt.want {
			t.Errorf("TasksPerPart(%d, %d) = %d, want %d", tt.parts, tt.members, got, tt.want)
		}
	}
}

func TestFallback_SingleMember(t *testing.T) {
	got := NewFallback().Generate("X", "", 1, []models.Member{{Name: "Alice"}})

	if len(got) != 2 {
		t.Fatalf("got %d subtasks, want 2", len(got))
	}

	want := []struct {
		title   string
		minutes int
	}{
		{"Part 1: Research and Planning", 120},
		{"Part 1: Analysis and Investigation", 180},
	}
	for i, w := range want {
		if got[i].Title != w.title {
			t.Errorf("got[%d].Title = %q, want %q", i, got[i].Title, w.title)
		}
		if got[i].EstimatedMinutes != w.minutes {
			t.Errorf("got[%d].EstimatedMinutes = %d, want %d", i, got[i].EstimatedMinutes, w.minutes)
		}
		if got[i].Assignee != "Alice" {
			t.Errorf("got[%d].Assignee = %q, want Alice", i, got[i].Assignee)
		}
		if got[i].Part != 1 {
			t.Errorf("got[%d].Part = %d, want 1", i, got[i].Part)
		}
		if !strings.HasSuffix(got[i].Details, " for X") {
			t.Errorf("got[%d].Details = %q, want suffix %q", i, got[i].Details, " for X")
		}
		if got[i].Scheduled != nil {
			t.Errorf("got[%d] should not be scheduled yet", i)
		}
	}
}

func TestFallback_RoundRobinAcrossParts(t *testing.T) {
	members := []models.Member{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	got := NewFallback().Generate("Lab report", "", 2, members)

	if len(got) != 8 {
		t.Fatalf("got %d subtasks, want 8", len(got))
	}
	for i, task := range got {
		if want := members[i%3].Name; task.Assignee != want {
			t.Errorf("got[%d].Assignee = %q, want %q", i, task.Assignee, want)
		}
		if wantPart := i/4 + 1; task.Part != wantPart {
			t.Errorf("got[%d].Part = %d, want %d", i, task.Part, wantPart)
		}
	}
	// The template restarts for every part.
	if got[4].Title != "Part 2: Research and Planning" {
		t.Errorf("got[4].Title = %q, want %q", got[4].Title, "Part 2: Research and Planning")
	}
}

func TestFallback_RolePreference(t *testing.T) {
	members := []models.Member{
		{Name: "Alice"},
		{Name: "Bob", Role: "Review"},
		{Name: "Carol", Role: "research"},
	}

	got := NewFallback().Generate("essay", "", 1, members)

	want := []string{"Carol", "Carol", "Carol", "Bob", "Bob", "Bob"}
	if len(got) != len(want) {
		t.Fatalf("got %d subtasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Assignee != want[i] {
			t.Errorf("%s: Assignee = %q, want %q", got[i].Title, got[i].Assignee, want[i])
		}
	}
}

func TestRoleMatches(t *testing.T) {
	tests := []struct {
		role string
		text string
		want bool
	}{
		{"Research", "Part 1: Analysis and Investigation", true},
		{"DESIGN", "plan the approach and Planning", true},
		{"Writing", "Part 2: Documentation", true},
		{"Review", "Part 1: Documentation", false},
		{"Manager", "review everything", false},
		{"", "research", false},
	}

	for _, tt := range tests {
		if got := RoleMatches(tt.role, tt.text); got != tt.want {
			t.Errorf("RoleMatches(%q, %q) = %v, want %v", tt.role, tt.text, got, tt.want)
		}
	}
}
