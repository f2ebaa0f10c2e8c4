package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

func TestPlanView_Filters(t *testing.T) {
	v := NewPlanView(samplePlan())

	if got := v.Filter(); got != "All" {
		t.Errorf("Filter() = %q, want All", got)
	}
	if got := len(v.Visible()); got != 3 {
		t.Errorf("len(Visible()) = %d, want 3", got)
	}

	tests := []struct {
		key        tea.KeyMsg
		wantFilter string
		wantRows   int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, "Alice", 2},
		{tea.KeyMsg{Type: tea.KeyTab}, "Bob", 1},
		{tea.KeyMsg{Type: tea.KeyTab}, "All", 3},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "Bob", 1},
	}
	for i, tt := range tests {
		v.Update(tt.key)
		if got := v.Filter(); got != tt.wantFilter {
			t.Errorf("step %d: Filter() = %q, want %q", i, got, tt.wantFilter)
		}
		if got := len(v.Visible()); got != tt.wantRows {
			t.Errorf("step %d: len(Visible()) = %d, want %d", i, got, tt.wantRows)
		}
		for _, s := range v.Visible() {
			if tt.wantFilter != "All" && s.Assignee != tt.wantFilter {
				t.Errorf("step %d: visible subtask for %s under filter %s", i, s.Assignee, tt.wantFilter)
			}
		}
	}
}

func TestPlanView_Selection(t *testing.T) {
	v := NewPlanView(samplePlan())

	s, ok := v.Selected()
	if !ok || s.Title != "Research" {
		t.Fatalf("Selected() = %q, %v; want Research", s.Title, ok)
	}
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	s, _ = v.Selected()
	if s.Title != "Outline" {
		t.Errorf("Selected() after down = %q, want Outline", s.Title)
	}
	if !strings.Contains(v.View(), "Draft outline") {
		t.Error("View() should show details of the selected subtask")
	}
}

func TestPlanView_PlanMsgKeepsFilter(t *testing.T) {
	v := NewPlanView(samplePlan())
	v.Update(tea.KeyMsg{Type: tea.KeyTab}) // Alice

	updated := samplePlan()
	updated.Subtasks = append(updated.Subtasks, models.Subtask{Part: 2, Title: "Proofread", Assignee: "Alice", EstimatedMinutes: 30})
	v.Update(PlanMsg{Plan: updated})

	if got := v.Filter(); got != "Alice" {
		t.Errorf("Filter() = %q, want Alice", got)
	}
	if got := len(v.Visible()); got != 3 {
		t.Errorf("len(Visible()) = %d, want 3", got)
	}

	// The filter resets when its member disappears.
	gone := samplePlan()
	gone.Subtasks = gone.Subtasks[1:2] // Bob only
	v.Update(PlanMsg{Plan: gone})
	if got := v.Filter(); got != "All" {
		t.Errorf("Filter() = %q, want All", got)
	}
}

func TestPlanView_ErrMsg(t *testing.T) {
	v := NewPlanView(samplePlan())
	v.Update(ErrMsg{Err: errors.New("request file is invalid")})
	if !strings.Contains(v.View(), "request file is invalid") {
		t.Error("View() should show the error")
	}
	v.Update(PlanMsg{Plan: samplePlan()})
	if strings.Contains(v.View(), "request file is invalid") {
		t.Error("a new plan should clear the error")
	}
}

func TestPlanView_SetErr(t *testing.T) {
	_, v := NewPlanProgram(Plan{})
	v.SetErr(errors.New("request file is invalid"))
	if !strings.Contains(v.View(), "request file is invalid") {
		t.Error("View() should show the error set before the program runs")
	}
}

func TestPlanView_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		v := NewPlanView(samplePlan())
		_, cmd := v.Update(key)
		if cmd == nil {
			t.Fatalf("Update(%s) returned no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Update(%s) command did not quit", key)
		}
		if v.View() != "" {
			t.Errorf("View() after %s = %q, want empty", key, v.View())
		}
	}
}

func TestPlanView_WindowSize(t *testing.T) {
	v := NewPlanView(samplePlan())
	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if v.width != 120 || v.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", v.width, v.height)
	}
	if !strings.Contains(v.View(), "Lab report") {
		t.Error("View() missing title")
	}
}

func TestPlanView_Empty(t *testing.T) {
	v := NewPlanView(Plan{Title: "Nothing"})
	if _, ok := v.Selected(); ok {
		t.Error("Selected() on empty plan should be false")
	}
	v.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := v.Filter(); got != "All" {
		t.Errorf("Filter() = %q, want All", got)
	}
}
