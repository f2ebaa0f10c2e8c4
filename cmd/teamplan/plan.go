package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/calendar"
	"github.com/ShayCichocki/teamplan/internal/plan"
	"github.com/ShayCichocki/teamplan/internal/request"
	"github.com/ShayCichocki/teamplan/internal/runlog"
	"github.com/ShayCichocki/teamplan/internal/schedule"
	"github.com/ShayCichocki/teamplan/internal/state"
	"github.com/ShayCichocki/teamplan/internal/tui"
	"github.com/ShayCichocki/teamplan/internal/watch"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

var (
	planNoAI    bool
	planBalance bool
	planSave    bool
	planICS     string
	planTUI     bool
	planWatch   bool
)

var planCmd = &cobra.Command{
	Use:   "plan <request.yaml>",
	Short: "Plan an assignment from a request file",
	Long: `Decompose, assign and schedule the assignment described in a request file.

The request file names the assignment, due date, team members and optional
working constraints. Run "teamplan init" for a commented example.

Every run is recorded in the run history, including runs that fail
validation.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planNoAI, "no-ai", false, "Use template decomposition even if Claude is configured")
	planCmd.Flags().BoolVar(&planBalance, "balance", false, "Even out workload across members before scheduling")
	planCmd.Flags().BoolVar(&planSave, "save", false, "Store the plan in the database")
	planCmd.Flags().StringVar(&planICS, "ics", "", "Also write the schedule as an iCalendar file")
	planCmd.Flags().BoolVar(&planTUI, "tui", false, "Browse the plan in an interactive view")
	planCmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "Re-plan whenever the request file changes")
}

type planOptions struct {
	requestPath string
	noAI        bool
	balance     bool
	save        bool
	icsPath     string
}

type planOutcome struct {
	request      plan.Request
	result       *plan.Result
	assignmentID string
}

func runPlan(cmd *cobra.Command, args []string) error {
	opts := planOptions{
		requestPath: args[0],
		noAI:        planNoAI,
		balance:     planBalance,
		save:        planSave,
		icsPath:     planICS,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	outcome, err := executePlan(ctx, env, opts)
	if err != nil && !planWatch {
		return err
	}

	switch {
	case planTUI:
		program, _ := newPlanProgram(outcome, err)
		if planWatch {
			go func() {
				werr := watchRequest(ctx, opts, func(o *planOutcome, err error) {
					if err != nil {
						program.Send(tui.ErrMsg{Err: err})
						return
					}
					program.Send(tui.PlanMsg{Plan: tui.FromResult(o.request, o.result)})
				})
				if werr != nil {
					program.Send(tui.ErrMsg{Err: werr})
				}
			}()
		}
		_, runErr := program.Run()
		return runErr

	case planWatch:
		printOutcome(out, outcome, err)
		fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)\n", opts.requestPath)
		return watchRequest(ctx, opts, func(o *planOutcome, err error) {
			fmt.Fprintln(out)
			printOutcome(out, o, err)
		})

	default:
		printOutcome(out, outcome, nil)
		return nil
	}
}

// newPlanProgram builds the interactive view for the first outcome. The
// initial error goes straight into the model since Send blocks until Run.
func newPlanProgram(outcome *planOutcome, err error) (*tea.Program, *tui.PlanView) {
	var initial tui.Plan
	if outcome != nil {
		initial = tui.FromResult(outcome.request, outcome.result)
	}
	program, view := tui.NewPlanProgram(initial)
	if err != nil {
		view.SetErr(err)
	}
	return program, view
}

// executePlan runs one planning pass and records it in the run history.
func executePlan(ctx context.Context, e *appEnv, opts planOptions) (outcome *planOutcome, err error) {
	logger := e.logger.With().Str("request", opts.requestPath).Logger()

	runs, err := openRunlog(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	defer runs.Close()

	run, err := runs.Start(filepath.Base(opts.requestPath), opts.requestPath)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	defer func() {
		run.Status = runlog.StatusSucceeded
		if err != nil {
			run.Status = runlog.StatusFailed
			run.Error = err.Error()
		}
		if outcome != nil {
			run.Title = outcome.request.Title
			run.Source = string(outcome.result.Source)
			run.Subtasks = len(outcome.result.Subtasks)
			run.Warnings = len(outcome.result.Warnings)
			run.Feasible = outcome.result.Report.Feasible
			run.AssignmentID = outcome.assignmentID
		}
		if ferr := runs.Finish(run); ferr != nil {
			logger.Warn().Err(ferr).Str("run", run.ID).Msg("failed to record run")
		}
	}()

	req, err := loadRequest(e, opts)
	if err != nil {
		return nil, err
	}
	run.Title = req.Title

	planOpts := []plan.Option{
		plan.WithPolicy(schedule.Policy{
			Buffer:           e.cfg.Scheduling.Buffer,
			DeadlineMargin:   e.cfg.Scheduling.DeadlineMargin,
			UtilizationLimit: e.cfg.Scheduling.UtilizationLimit,
		}),
		plan.WithLogger(logger),
		plan.WithProviderTimeout(e.cfg.Provider.Timeout),
	}

	var planner *plan.Planner
	if opts.noAI {
		planner = plan.New(nil, planOpts...)
	} else {
		provider, client, perr := newProvider(e.cfg, logger)
		if perr != nil {
			// A broken provider setup degrades to templates like any other provider failure.
			logger.Warn().Err(perr).Msg("provider unavailable")
		}
		planner = plan.New(provider, planOpts...)
		if client != nil {
			defer func() {
				in, out := client.Tracker().Total()
				logger.Info().
					Int("calls", client.Tracker().Calls()).
					Int64("input_tokens", in).
					Int64("output_tokens", out).
					Float64("cost_usd", client.Tracker().Cost()).
					Msg("provider usage")
			}()
		}
	}

	res, err := planner.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	outcome = &planOutcome{request: req, result: res}

	if opts.save {
		id, err := saveOutcome(e, outcome)
		if err != nil {
			return outcome, err
		}
		outcome.assignmentID = id
	}

	if opts.icsPath != "" {
		if err := writeICSFile(opts.icsPath, req.Title, subtaskEvents(res.Subtasks)); err != nil {
			return outcome, err
		}
		logger.Info().Str("path", opts.icsPath).Msg("calendar written")
	}
	return outcome, nil
}

func loadRequest(e *appEnv, opts planOptions) (plan.Request, error) {
	constraints, err := e.cfg.Defaults.Constraints()
	if err != nil {
		return plan.Request{}, fmt.Errorf("config defaults: %w", err)
	}
	f, err := request.Load(opts.requestPath)
	if err != nil {
		return plan.Request{}, err
	}
	req, err := f.Resolve(request.Defaults{Parts: e.cfg.Defaults.Parts, Constraints: constraints})
	if err != nil {
		return plan.Request{}, err
	}
	if opts.balance {
		req.Balance = true
	}
	return req, nil
}

func saveOutcome(e *appEnv, o *planOutcome) (string, error) {
	db, err := openStore(e.cfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	a := &state.Assignment{
		Title:       o.request.Title,
		Description: o.request.Description,
		DueDate:     o.request.DueDate,
		Parts:       o.request.Parts,
		Members:     o.request.Members,
		Constraints: o.request.Constraints,
		Source:      string(o.result.Source),
		Report:      o.result.Report,
	}
	if err := db.SaveAssignment(a, o.result.Subtasks); err != nil {
		return "", fmt.Errorf("save plan: %w", err)
	}
	e.logger.Info().Str("assignment", a.ID).Msg("plan saved")
	return a.ID, nil
}

// watchRequest re-plans after every change to the request file.
func watchRequest(ctx context.Context, opts planOptions, report func(*planOutcome, error)) error {
	w := watch.New(opts.requestPath, watch.WithLogger(env.logger.With().Str("component", "watch").Logger()))
	return w.Run(ctx, func() {
		report(executePlan(ctx, env, opts))
	})
}

func printOutcome(out io.Writer, o *planOutcome, err error) {
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "%s invalid request: %v\n", color.RedString("✗"), verr)
		} else {
			fmt.Fprintf(out, "%s %v\n", color.RedString("✗"), err)
		}
		return
	}
	if o == nil {
		return
	}
	fmt.Fprint(out, tui.RenderPlan(tui.FromResult(o.request, o.result)))
	if o.assignmentID != "" {
		fmt.Fprintf(out, "\n%s saved as %s\n", color.GreenString("✓"), o.assignmentID)
	}
}

func writeICSFile(path, name string, events []calendar.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create calendar file: %w", err)
	}
	if err := calendar.Write(f, name, events); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
