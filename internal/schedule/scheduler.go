package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Scheduler assigns calendar slots to subtasks.
// It holds no per-call state, so one Scheduler can serve concurrent requests.
type Scheduler struct {
	policy Policy
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Scheduler or Validator.
type Option func(*options)

type options struct {
	policy Policy
	now    func() time.Time
	logger zerolog.Logger
}

// WithPolicy overrides the scheduling rules.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithClock overrides the time source used to find "tomorrow".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger for scheduling diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		policy: DefaultPolicy(),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.policy = o.policy.withDefaults()
	return o
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	o := buildOptions(opts)
	return &Scheduler{policy: o.policy, now: o.now, logger: o.logger}
}

// Policy returns the rules this scheduler applies.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// Result is the outcome of one scheduling pass.
type Result struct {
	// Subtasks are the scheduled copies, in placement order.
	Subtasks []models.Subtask
	// Warnings flag subtasks that put the deadline at risk.
	Warnings []models.FeasibilityWarning
}

// pass is the state of a single ScheduleAll call.
type pass struct {
	constraints models.Constraints
	origin      time.Time
	cursor      map[string]time.Time
}

// next returns the next free slot for the member, initialising the cursor lazily.
func (p *pass) next(member string) time.Time {
	slot, ok := p.cursor[member]
	if !ok {
		slot = p.origin
	}
	return NextWorkingSlot(slot, p.constraints)
}

// ScheduleAll places every subtask into a slot for its assignee.
//
// Subtasks are ordered by part, longest first within a part. Each member's
// subtasks are laid out back to back with the policy buffer in between, only
// starting inside working hours on allowed days. A subtask is always placed;
// one that runs close to or past the deadline produces a warning instead.
// The input slice is not modified.
func (s *Scheduler) ScheduleAll(subtasks []models.Subtask, due time.Time, c models.Constraints) Result {
	ordered := make([]models.Subtask, len(subtasks))
	copy(ordered, subtasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Part != ordered[j].Part {
			return ordered[i].Part < ordered[j].Part
		}
		return ordered[i].EstimatedMinutes > ordered[j].EstimatedMinutes
	})

	p := &pass{
		constraints: c,
		origin:      tomorrowAt(s.now(), c.StartHour),
		cursor:      make(map[string]time.Time),
	}
	riskAfter := due.Add(-s.policy.DeadlineMargin)

	var warnings []models.FeasibilityWarning
	for i := range ordered {
		task := &ordered[i]
		start := p.next(task.Assignee)
		end := start.Add(task.Estimate())
		task.Scheduled = &models.Slot{Start: start, End: end}
		p.cursor[task.Assignee] = end.Add(s.policy.Buffer)

		if start.After(riskAfter) {
			warnings = append(warnings, newWarning(models.WarningPastSafetyMargin, *task,
				fmt.Sprintf("starts within %s of the deadline", s.policy.DeadlineMargin)))
		}
		if end.After(due) {
			warnings = append(warnings, newWarning(models.WarningPastDeadline, *task,
				"ends after the deadline"))
		}
	}

	if len(warnings) > 0 {
		s.logger.Warn().
			Int("warnings", len(warnings)).
			Time("due", due).
			Msg("schedule puts the deadline at risk")
	}
	s.logger.Debug().Int("subtasks", len(ordered)).Int("members", len(p.cursor)).Msg("scheduling pass complete")

	return Result{Subtasks: ordered, Warnings: warnings}
}

func newWarning(kind models.WarningKind, t models.Subtask, msg string) models.FeasibilityWarning {
	return models.FeasibilityWarning{
		Kind:     kind,
		Part:     t.Part,
		Title:    t.Title,
		Assignee: t.Assignee,
		Start:    t.Scheduled.Start,
		End:      t.Scheduled.End,
		Message:  msg,
	}
}

// NextWorkingSlot moves t forward to the earliest instant inside the working
// window. Times before the window snap to its opening, times at or after its
// close roll to the next day, and disallowed weekdays are skipped.
func NextWorkingSlot(t time.Time, c models.Constraints) time.Time {
	if t.Hour() < c.StartHour {
		t = atHour(t, 0, c.StartHour)
	} else if t.Hour() >= c.EndHour {
		t = atHour(t, 1, c.StartHour)
	}
	for i := 0; i < 7 && !c.Allows(t.Weekday()); i++ {
		t = atHour(t, 1, c.StartHour)
	}
	return t
}

// atHour returns the date of t shifted by days, at hour:00:00.
func atHour(t time.Time, days, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, hour, 0, 0, 0, t.Location())
}
