package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/runlog"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent planning runs",
	Long: `List recent "teamplan plan" runs, newest first, including runs that
failed validation. Runs that saved a plan show its ID.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := openRunlog(env.cfg)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer runs.Close()

		list, err := runs.List(historyLimit)
		if err != nil {
			return err
		}
		displayRuns(cmd.OutOrStdout(), list, time.Now())
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of runs")
}

func displayRuns(out io.Writer, runs []runlog.Run, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No planning runs yet. Run 'teamplan plan <request>' to start.")
		return
	}

	fmt.Fprintln(out, "Recent runs:")
	for _, r := range runs {
		fmt.Fprintf(out, "  %s %s  %s  (%s ago)\n", statusMark(r.Status), shortID(r.ID), r.Title, formatDuration(now.Sub(r.StartedAt)))
		switch r.Status {
		case runlog.StatusFailed:
			fmt.Fprintf(out, "      %s\n", color.RedString(r.Error))
		case runlog.StatusSucceeded:
			detail := fmt.Sprintf("%d subtasks via %s, %d warnings", r.Subtasks, r.Source, r.Warnings)
			if !r.Feasible {
				detail += ", " + color.YellowString("not feasible")
			}
			if r.AssignmentID != "" {
				detail += ", saved as " + shortID(r.AssignmentID)
			}
			fmt.Fprintf(out, "      %s\n", detail)
		}
	}
}

func statusMark(status string) string {
	switch status {
	case runlog.StatusSucceeded:
		return color.GreenString("✓")
	case runlog.StatusFailed:
		return color.RedString("✗")
	default:
		return color.YellowString("…")
	}
}
