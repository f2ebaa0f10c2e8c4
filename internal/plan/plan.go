// Package plan runs the assignment planning pipeline: decompose, optionally
// balance, schedule and check feasibility.
package plan

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/teamplan/internal/decompose"
	"github.com/ShayCichocki/teamplan/internal/schedule"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Request is one planning request.
type Request struct {
	Title       string
	Description string
	DueDate     time.Time
	Parts       int
	Members     []models.Member
	Constraints models.Constraints
	// Balance redistributes assignees by workload before scheduling.
	Balance bool
}

// Input converts the request into decomposer input.
func (r Request) Input() decompose.Input {
	return decompose.Input{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Parts:       r.Parts,
		Members:     r.Members,
		Constraints: r.Constraints,
	}
}

// Validate checks every precondition of Plan.
func (r Request) Validate() error {
	if r.DueDate.IsZero() {
		return &models.ValidationError{Field: "dueDate", Message: "must be set"}
	}
	return decompose.ValidateInput(r.Input())
}

// Result is a finished plan.
type Result struct {
	// Subtasks are scheduled and ordered by part, then start time.
	Subtasks []models.Subtask
	Warnings []models.FeasibilityWarning
	Report   models.FeasibilityReport
	Source   decompose.Source
	// ProviderErr is the provider failure that caused a fallback, if any.
	ProviderErr error
}

// Planner wires the decomposer, balancer, scheduler and validator together.
// It keeps no state between calls.
type Planner struct {
	decomposer *decompose.Decomposer
	scheduler  *schedule.Scheduler
	validator  *schedule.Validator
	logger     zerolog.Logger
}

type config struct {
	policy          schedule.Policy
	now             func() time.Time
	logger          zerolog.Logger
	providerTimeout time.Duration
}

// Option configures a Planner.
type Option func(*config)

// WithPolicy sets the scheduling policy.
func WithPolicy(p schedule.Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithLogger sets the logger shared by every stage.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithProviderTimeout bounds each provider call.
func WithProviderTimeout(d time.Duration) Option {
	return func(c *config) { c.providerTimeout = d }
}

// New creates a Planner. provider may be nil to always use the fallback.
func New(provider decompose.Provider, opts ...Option) *Planner {
	cfg := config{
		policy:          schedule.DefaultPolicy(),
		now:             time.Now,
		logger:          zerolog.Nop(),
		providerTimeout: decompose.DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	schedOpts := []schedule.Option{
		schedule.WithPolicy(cfg.policy),
		schedule.WithClock(cfg.now),
		schedule.WithLogger(cfg.logger.With().Str("component", "schedule").Logger()),
	}
	return &Planner{
		decomposer: decompose.New(provider,
			decompose.WithTimeout(cfg.providerTimeout),
			decompose.WithClock(cfg.now),
			decompose.WithLogger(cfg.logger.With().Str("component", "decompose").Logger()),
		),
		scheduler: schedule.NewScheduler(schedOpts...),
		validator: schedule.NewValidator(schedOpts...),
		logger:    cfg.logger,
	}
}

// Decompose breaks the request into unscheduled, or provisionally scheduled,
// subtasks.
func (p *Planner) Decompose(ctx context.Context, req Request) (*decompose.Result, error) {
	return p.decomposer.Decompose(ctx, req.Input())
}

// BalanceWorkload evens out estimated minutes across assignees.
func (p *Planner) BalanceWorkload(subtasks []models.Subtask) []models.Subtask {
	return schedule.Balance(subtasks)
}

// ScheduleAll places the subtasks on the calendar.
func (p *Planner) ScheduleAll(subtasks []models.Subtask, due time.Time, c models.Constraints) schedule.Result {
	return p.scheduler.ScheduleAll(subtasks, due, c)
}

// ValidateFeasibility reports whether the subtasks fit before the deadline.
func (p *Planner) ValidateFeasibility(subtasks []models.Subtask, due time.Time, c models.Constraints, memberCount int) models.FeasibilityReport {
	return p.validator.Validate(subtasks, due, c, memberCount)
}

// Plan runs the full pipeline. Only a *models.ValidationError is returned;
// provider failures are recorded on the result and planning continues with
// the fallback decomposition.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decomposed, err := p.Decompose(ctx, req)
	if err != nil {
		return nil, err
	}

	subtasks := decomposed.Subtasks
	if req.Balance {
		subtasks = p.BalanceWorkload(subtasks)
	}

	scheduled := p.ScheduleAll(subtasks, req.DueDate, req.Constraints)
	ordered := scheduled.Subtasks
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Part != ordered[j].Part {
			return ordered[i].Part < ordered[j].Part
		}
		return ordered[i].Scheduled.Start.Before(ordered[j].Scheduled.Start)
	})

	report := p.ValidateFeasibility(ordered, req.DueDate, req.Constraints, len(req.Members))

	p.logger.Info().
		Str("title", req.Title).
		Str("source", string(decomposed.Source)).
		Int("subtasks", len(ordered)).
		Int("warnings", len(scheduled.Warnings)).
		Bool("feasible", report.Feasible).
		Msg("plan ready")

	return &Result{
		Subtasks:    ordered,
		Warnings:    scheduled.Warnings,
		Report:      report,
		Source:      decomposed.Source,
		ProviderErr: decomposed.ProviderErr,
	}, nil
}
