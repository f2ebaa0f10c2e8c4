package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/teamplan/internal/decompose"
	"github.com/ShayCichocki/teamplan/internal/plan"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func samplePlan() Plan {
	return Plan{
		Title:  "Lab report",
		Due:    at(13, 17, 0),
		Source: "fallback",
		Subtasks: []models.Subtask{
			{Part: 1, Title: "Research", Details: "Read papers", Assignee: "Alice", EstimatedMinutes: 120,
				Scheduled: &models.Slot{Start: at(6, 9, 0), End: at(6, 11, 0)}},
			{Part: 1, Title: "Outline", Details: "Draft outline", Assignee: "Bob", EstimatedMinutes: 90,
				Scheduled: &models.Slot{Start: at(6, 9, 0), End: at(6, 10, 30)}},
			{Part: 2, Title: "Write up", Details: "Full draft", Assignee: "Alice", EstimatedMinutes: 45,
				Scheduled: &models.Slot{Start: at(6, 11, 15), End: at(6, 12, 0)}},
		},
		Report: &models.FeasibilityReport{Feasible: true, RequiredHours: 4.25, AvailableHours: 96},
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h30m"},
		{125, "2h05m"},
		{600, "10h"},
	}
	for _, tt := range tests {
		if got := FormatMinutes(tt.in); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSlot(t *testing.T) {
	tests := []struct {
		name string
		slot *models.Slot
		want string
	}{
		{name: "nil", slot: nil, want: "unscheduled"},
		{name: "same day", slot: &models.Slot{Start: at(6, 9, 0), End: at(6, 11, 0)}, want: "Fri 06 Mar 09:00-11:00"},
		{name: "overnight", slot: &models.Slot{Start: at(6, 16, 0), End: at(7, 1, 0)}, want: "Fri 06 Mar 16:00 - Sat 07 Mar 01:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSlot(tt.slot); got != tt.want {
				t.Errorf("FormatSlot() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoads(t *testing.T) {
	loads := Loads(samplePlan().Subtasks)
	want := []MemberLoad{
		{Name: "Alice", Minutes: 165, Subtasks: 2},
		{Name: "Bob", Minutes: 90, Subtasks: 1},
	}
	if len(loads) != len(want) {
		t.Fatalf("Loads() = %+v, want %+v", loads, want)
	}
	for i := range want {
		if loads[i] != want[i] {
			t.Errorf("Loads()[%d] = %+v, want %+v", i, loads[i], want[i])
		}
	}
}

func TestLoads_TiesByName(t *testing.T) {
	loads := Loads([]models.Subtask{
		{Assignee: "Zed", EstimatedMinutes: 60},
		{Assignee: "Amy", EstimatedMinutes: 60},
	})
	if loads[0].Name != "Amy" || loads[1].Name != "Zed" {
		t.Errorf("Loads() order = %s, %s; want Amy, Zed", loads[0].Name, loads[1].Name)
	}
}

func TestRenderPlan(t *testing.T) {
	p := samplePlan()
	p.Warnings = []models.FeasibilityWarning{{Kind: models.WarningPastDeadline, Message: "Write up ends after the deadline"}}
	out := RenderPlan(p)

	for _, want := range []string{
		"Lab report",
		"due Fri 13 Mar 2026 17:00 UTC",
		"3 subtasks",
		"source fallback",
		"Part 1",
		"Part 2",
		"Fri 06 Mar 09:00-11:00",
		"Research",
		"Workload",
		"2h45m",
		"(2 subtasks)",
		"feasible",
		"4.2h required of 96.0h available",
		"1 warnings",
		"Write up ends after the deadline",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPlan() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Part 1") > strings.Index(out, "Part 2") {
		t.Error("Part 1 should be rendered before Part 2")
	}
}

func TestRenderPlan_NotFeasible(t *testing.T) {
	p := samplePlan()
	p.Report = &models.FeasibilityReport{Feasible: false, RequiredHours: 200, AvailableHours: 16}
	out := RenderPlan(p)
	if !strings.Contains(out, "not feasible") {
		t.Errorf("RenderPlan() missing infeasible marker:\n%s", out)
	}

	p.Report = nil
	if out := RenderPlan(p); strings.Contains(out, "feasible") {
		t.Errorf("RenderPlan() without report mentions feasibility:\n%s", out)
	}
}

func TestFromResult(t *testing.T) {
	req := plan.Request{Title: "Essay", DueDate: at(20, 17, 0)}
	res := &plan.Result{
		Subtasks:    samplePlan().Subtasks,
		Source:      decompose.SourceFallback,
		Report:      models.FeasibilityReport{Feasible: true},
		ProviderErr: errors.New("timeout"),
	}
	p := FromResult(req, res)
	if p.Title != "Essay" || !p.Due.Equal(req.DueDate) {
		t.Errorf("FromResult() header = %q %v", p.Title, p.Due)
	}
	if p.Source != "fallback" {
		t.Errorf("Source = %q, want fallback", p.Source)
	}
	if p.Report == nil || !p.Report.Feasible {
		t.Errorf("Report = %+v, want feasible", p.Report)
	}
	if !strings.Contains(p.Note, "timeout") {
		t.Errorf("Note = %q, want provider error", p.Note)
	}
}
