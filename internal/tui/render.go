package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ShayCichocki/teamplan/internal/plan"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Plan is everything the views need to show one planned assignment.
type Plan struct {
	Title    string
	Due      time.Time
	Source   string
	Subtasks []models.Subtask
	Warnings []models.FeasibilityWarning
	// Report is nil when feasibility was not computed.
	Report *models.FeasibilityReport
	// Note is shown under the header, e.g. why the fallback was used.
	Note string
}

// FromResult builds a Plan from a finished planning run.
func FromResult(req plan.Request, res *plan.Result) Plan {
	report := res.Report
	p := Plan{
		Title:    req.Title,
		Due:      req.DueDate,
		Source:   string(res.Source),
		Subtasks: res.Subtasks,
		Warnings: res.Warnings,
		Report:   &report,
	}
	if res.ProviderErr != nil {
		p.Note = "provider unavailable, used templates: " + res.ProviderErr.Error()
	}
	return p
}

// MemberLoad is one member's share of the work.
type MemberLoad struct {
	Name     string
	Minutes  int
	Subtasks int
}

// Loads totals the work per assignee, heaviest first, then by name.
func Loads(subtasks []models.Subtask) []MemberLoad {
	byName := make(map[string]*MemberLoad)
	var order []string
	for _, t := range subtasks {
		l, ok := byName[t.Assignee]
		if !ok {
			l = &MemberLoad{Name: t.Assignee}
			byName[t.Assignee] = l
			order = append(order, t.Assignee)
		}
		l.Minutes += t.EstimatedMinutes
		l.Subtasks++
	}
	loads := make([]MemberLoad, len(order))
	for i, name := range order {
		loads[i] = *byName[name]
	}
	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].Minutes != loads[j].Minutes {
			return loads[i].Minutes > loads[j].Minutes
		}
		return loads[i].Name < loads[j].Name
	})
	return loads
}

// FormatMinutes renders a duration in minutes as "1h30m", "2h" or "45m".
func FormatMinutes(m int) string {
	h, rest := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, rest)
	}
}

// FormatSlot renders a scheduled slot, or "unscheduled".
func FormatSlot(s *models.Slot) string {
	if s == nil {
		return "unscheduled"
	}
	start, end := s.Start.UTC(), s.End.UTC()
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return start.Format("Mon 02 Jan 15:04") + "-" + end.Format("15:04")
	}
	return start.Format("Mon 02 Jan 15:04") + " - " + end.Format("Mon 02 Jan 15:04")
}

// RenderPlan renders a static summary grouped by part.
func RenderPlan(p Plan) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(header(p)))
	b.WriteString("\n")
	if p.Note != "" {
		b.WriteString(warnStyle.Render(p.Note))
		b.WriteString("\n")
	}

	part := 0
	for _, t := range p.Subtasks {
		if t.Part != part {
			part = t.Part
			b.WriteString("\n")
			b.WriteString(partStyle.Render(fmt.Sprintf("Part %d", part)))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-28s %s %6s  %s\n",
			FormatSlot(t.Scheduled),
			assigneeStyle.Render(fmt.Sprintf("%-10s", t.Assignee)),
			FormatMinutes(t.EstimatedMinutes),
			t.Title)
	}

	if loads := Loads(p.Subtasks); len(loads) > 0 {
		b.WriteString("\n")
		b.WriteString(partStyle.Render("Workload"))
		b.WriteString("\n")
		for _, l := range loads {
			fmt.Fprintf(&b, "  %-10s %6s  (%d subtasks)\n", l.Name, FormatMinutes(l.Minutes), l.Subtasks)
		}
	}

	if p.Report != nil {
		b.WriteString("\n")
		b.WriteString(feasibilityLine(*p.Report))
		b.WriteString("\n")
	}

	if len(p.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d warnings", len(p.Warnings))))
		b.WriteString("\n")
		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  %s %s\n", warnStyle.Render("!"), w.Message)
		}
	}
	return b.String()
}

func header(p Plan) string {
	parts := []string{fmt.Sprintf("%d subtasks", len(p.Subtasks))}
	if !p.Due.IsZero() {
		parts = append([]string{"due " + p.Due.UTC().Format("Mon 02 Jan 2006 15:04 MST")}, parts...)
	}
	if p.Source != "" {
		parts = append(parts, "source "+p.Source)
	}
	return strings.Join(parts, " · ")
}

func feasibilityLine(r models.FeasibilityReport) string {
	detail := fmt.Sprintf("%.1fh required of %.1fh available", r.RequiredHours, r.AvailableHours)
	if r.Feasible {
		return okStyle.Render("✓ feasible") + " " + subtleStyle.Render(detail)
	}
	return errorStyle.Render("✗ not feasible") + " " + subtleStyle.Render(detail)
}
