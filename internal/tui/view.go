package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// PlanMsg replaces the plan shown by a running PlanView.
type PlanMsg struct {
	Plan Plan
}

// ErrMsg shows an error in the footer, e.g. a failed re-plan in watch mode.
type ErrMsg struct {
	Err error
}

const allMembers = "All"

var planColumns = []table.Column{
	{Title: "Part", Width: 4},
	{Title: "When", Width: 22},
	{Title: "Assignee", Width: 12},
	{Title: "Effort", Width: 7},
	{Title: "Title", Width: 40},
}

// PlanView is an interactive subtask table with a member filter.
type PlanView struct {
	plan    Plan
	filters []string
	filter  int
	// visible maps table rows back to subtasks.
	visible  []models.Subtask
	table    table.Model
	width    int
	height   int
	err      error
	quitting bool
}

// NewPlanView creates a view showing p.
func NewPlanView(p Plan) *PlanView {
	t := table.New(
		table.WithColumns(planColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("236")).
		Bold(true)
	t.SetStyles(styles)

	v := &PlanView{table: t, width: 100, height: 30}
	v.SetPlan(p)
	return v
}

// NewPlanProgram creates a full-screen program around a new PlanView.
func NewPlanProgram(p Plan) (*tea.Program, *PlanView) {
	v := NewPlanView(p)
	return tea.NewProgram(v, tea.WithAltScreen()), v
}

// SetPlan replaces the plan, keeping the member filter when it still applies.
func (v *PlanView) SetPlan(p Plan) {
	current := v.Filter()
	v.plan = p

	v.filters = []string{allMembers}
	seen := make(map[string]bool)
	for _, t := range p.Subtasks {
		if !seen[t.Assignee] {
			seen[t.Assignee] = true
			v.filters = append(v.filters, t.Assignee)
		}
	}
	v.filter = 0
	for i, f := range v.filters {
		if f == current {
			v.filter = i
		}
	}
	v.refresh()
}

// SetErr shows err below the plan until the next plan arrives. Use it before
// the program runs; a running program takes ErrMsg instead.
func (v *PlanView) SetErr(err error) {
	v.err = err
}

// Filter returns the selected member, or "All".
func (v *PlanView) Filter() string {
	if v.filter >= len(v.filters) {
		return allMembers
	}
	return v.filters[v.filter]
}

// Visible returns the subtasks currently listed.
func (v *PlanView) Visible() []models.Subtask {
	return v.visible
}

// Selected returns the subtask under the cursor.
func (v *PlanView) Selected() (models.Subtask, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.visible) {
		return models.Subtask{}, false
	}
	return v.visible[i], true
}

func (v *PlanView) refresh() {
	filter := v.Filter()
	v.visible = make([]models.Subtask, 0, len(v.plan.Subtasks))
	rows := make([]table.Row, 0, len(v.plan.Subtasks))
	for _, t := range v.plan.Subtasks {
		if filter != allMembers && t.Assignee != filter {
			continue
		}
		v.visible = append(v.visible, t)
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.Part),
			FormatSlot(t.Scheduled),
			t.Assignee,
			FormatMinutes(t.EstimatedMinutes),
			t.Title,
		})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Init implements tea.Model.
func (v *PlanView) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (v *PlanView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetWidth(msg.Width - 4)
		// Header, filter bar, detail box and footer take about 12 lines.
		v.table.SetHeight(max(msg.Height-12, 3))
		return v, nil

	case PlanMsg:
		v.err = nil
		v.SetPlan(msg.Plan)
		return v, nil

	case ErrMsg:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			v.quitting = true
			return v, tea.Quit
		case "tab":
			v.filter = (v.filter + 1) % len(v.filters)
			v.refresh()
			return v, nil
		case "shift+tab":
			v.filter = (v.filter - 1 + len(v.filters)) % len(v.filters)
			v.refresh()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

// View implements tea.Model.
func (v *PlanView) View() string {
	if v.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(v.plan.Title))
	b.WriteString("  ")
	b.WriteString(subtleStyle.Render(header(v.plan)))
	b.WriteString("\n")
	if v.plan.Report != nil {
		b.WriteString(feasibilityLine(*v.plan.Report))
		if n := len(v.plan.Warnings); n > 0 {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render(fmt.Sprintf("%d warnings", n)))
		}
		b.WriteString("\n")
	}
	b.WriteString(v.filterBar())
	b.WriteString("\n\n")
	b.WriteString(v.table.View())
	b.WriteString("\n")

	if t, ok := v.Selected(); ok {
		b.WriteString(boxStyle.Width(max(v.width-4, 20)).Render(t.Title + "\n" + subtleStyle.Render(t.Details)))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString(errorStyle.Render("✗ " + v.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(subtleStyle.Render("tab/shift+tab member │ ↑/↓ select │ q quit"))
	return b.String()
}

func (v *PlanView) filterBar() string {
	rendered := make([]string, len(v.filters))
	for i, f := range v.filters {
		if i == v.filter {
			rendered[i] = activeFilterStyle.Render(f)
		} else {
			rendered[i] = inactiveFilterStyle.Render(f)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
