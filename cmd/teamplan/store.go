package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/calendar"
	"github.com/ShayCichocki/teamplan/internal/state"
	"github.com/ShayCichocki/teamplan/internal/tui"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

var (
	listLimit  int
	showTUI    bool
	exportPath string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(env.cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return listAssignments(cmd.OutOrStdout(), db, listLimit, time.Now())
	},
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved plan",
	Long: `Show a saved plan. Without an ID the most recently saved plan is shown.
IDs may be abbreviated to any unique prefix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved plan as an iCalendar file",
	Long: `Write the calendar events of a saved plan as iCalendar (RFC 5545).
Event UIDs are stable, so re-importing an export updates existing entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(env.cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		a, err := resolveAssignment(db, args[0])
		if err != nil {
			return err
		}
		if err := db.DeleteAssignment(a.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s (%s)\n", color.GreenString("✓"), a.ID, a.Title)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of plans (0 for all)")
	showCmd.Flags().BoolVar(&showTUI, "tui", false, "Browse the plan in an interactive view")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Output file (default: stdout)")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStore(env.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var a *state.Assignment
	if len(args) == 0 {
		recent, err := db.ListAssignments(1)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved plans. Run 'teamplan plan <request> --save' first.")
			return nil
		}
		a = &recent[0]
	} else if a, err = resolveAssignment(db, args[0]); err != nil {
		return err
	}

	p, err := storedPlan(db, a)
	if err != nil {
		return err
	}
	if showTUI {
		program, _ := tui.NewPlanProgram(p)
		_, err := program.Run()
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  saved %s\n", a.ID, a.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Members: %s\n\n", memberList(a.Members))
	fmt.Fprint(out, tui.RenderPlan(p))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openStore(env.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := resolveAssignment(db, args[0])
	if err != nil {
		return err
	}
	tasks, err := db.ListTasks(a.ID)
	if err != nil {
		return err
	}
	stored, err := db.ListEvents(a.ID)
	if err != nil {
		return err
	}
	events := storedEvents(tasks, stored)

	if exportPath == "" {
		return calendar.Write(cmd.OutOrStdout(), a.Title, events)
	}
	if err := writeICSFile(exportPath, a.Title, events); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %d events to %s\n", color.GreenString("✓"), len(events), exportPath)
	return nil
}

// resolveAssignment finds a saved plan by full ID or unique ID prefix.
func resolveAssignment(db *state.DB, id string) (*state.Assignment, error) {
	a, err := db.GetAssignment(id)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	all, err := db.ListAssignments(0)
	if err != nil {
		return nil, err
	}
	var matches []state.Assignment
	for _, candidate := range all {
		if strings.HasPrefix(candidate.ID, id) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no saved plan matches %q", id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d saved plans, use a longer prefix", id, len(matches))
	}
}

func storedPlan(db *state.DB, a *state.Assignment) (tui.Plan, error) {
	subtasks, err := db.LoadSubtasks(a.ID)
	if err != nil {
		return tui.Plan{}, err
	}
	report := a.Report
	return tui.Plan{
		Title:    a.Title,
		Due:      a.DueDate,
		Source:   a.Source,
		Subtasks: subtasks,
		Report:   &report,
	}, nil
}

func listAssignments(out io.Writer, db *state.DB, limit int, now time.Time) error {
	assignments, err := db.ListAssignments(limit)
	if err != nil {
		return err
	}
	if len(assignments) == 0 {
		fmt.Fprintln(out, "No saved plans.")
		return nil
	}

	fmt.Fprintln(out, "Saved plans:")
	for _, a := range assignments {
		mark := color.GreenString("✓")
		if !a.Report.Feasible {
			mark = color.RedString("✗")
		}
		fmt.Fprintf(out, "  %s %s  %-30s due %s  %d members  (%s ago)\n",
			mark, shortID(a.ID), a.Title,
			a.DueDate.UTC().Format("2006-01-02 15:04"),
			len(a.Members),
			formatDuration(now.Sub(a.CreatedAt)))
	}
	return nil
}

// subtaskEvents converts scheduled subtasks into calendar events with fresh UIDs.
func subtaskEvents(subtasks []models.Subtask) []calendar.Event {
	var events []calendar.Event
	for _, t := range subtasks {
		if !t.IsScheduled() {
			continue
		}
		events = append(events, calendar.Event{
			UID:         uuid.New().String() + "@teamplan",
			Summary:     eventSummary(t.Part, t.Title),
			Description: t.Details,
			Attendee:    t.Assignee,
			Start:       t.Scheduled.Start,
			End:         t.Scheduled.End,
		})
	}
	return events
}

// storedEvents converts saved events, reusing their IDs as UIDs.
func storedEvents(tasks []state.Task, stored []state.CalendarEvent) []calendar.Event {
	parts := make(map[string]int, len(tasks))
	for _, t := range tasks {
		parts[t.ID] = t.Part
	}
	events := make([]calendar.Event, len(stored))
	for i, e := range stored {
		events[i] = calendar.Event{
			UID:         e.ID + "@teamplan",
			Summary:     eventSummary(parts[e.TaskID], e.Title),
			Description: e.Description,
			Attendee:    e.Assignee,
			Start:       e.Start,
			End:         e.End,
		}
	}
	return events
}

func eventSummary(part int, title string) string {
	return fmt.Sprintf("[Part %d] %s", part, title)
}

func memberList(members []models.Member) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
		if m.Role != "" {
			names[i] += " (" + m.Role + ")"
		}
	}
	return strings.Join(names, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dd", int(d.Hours())/24)
}
