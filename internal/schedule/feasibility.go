package schedule

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Validator checks whether a plan fits inside the team's working capacity.
type Validator struct {
	policy Policy
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a Validator. It accepts the same options as NewScheduler.
func NewValidator(opts ...Option) *Validator {
	o := buildOptions(opts)
	return &Validator{policy: o.policy, now: o.now, logger: o.logger}
}

// Validate compares the total estimated effort with the capacity between
// tomorrow and the due date, assuming all members work in parallel. The plan
// is feasible when it needs no more than the policy utilization limit of that
// capacity. The result is advisory; nothing refuses to schedule on it.
func (v *Validator) Validate(subtasks []models.Subtask, due time.Time, c models.Constraints, memberCount int) models.FeasibilityReport {
	totalMinutes := 0
	for _, t := range subtasks {
		totalMinutes += t.EstimatedMinutes
	}
	required := float64(totalMinutes) / 60

	days := CountWorkingDays(tomorrowAt(v.now(), 0), due, c)
	available := float64(c.WorkHoursPerDay*days) * float64(memberCount)

	report := models.FeasibilityReport{
		Feasible:       required <= available*v.policy.UtilizationLimit,
		RequiredHours:  required,
		AvailableHours: available,
	}

	v.logger.Debug().
		Float64("required_hours", report.RequiredHours).
		Float64("available_hours", report.AvailableHours).
		Int("working_days", days).
		Bool("feasible", report.Feasible).
		Msg("feasibility checked")

	return report
}

// CountWorkingDays counts the calendar dates from from to to, both inclusive,
// that fall on an allowed weekday. It returns 0 when to is before from.
func CountWorkingDays(from, to time.Time, c models.Constraints) int {
	start := civilDate(from)
	end := civilDate(to.In(from.Location()))
	if end.Before(start) {
		return 0
	}

	// Whole days from Unix seconds; Time.Sub saturates after about 292 years.
	span := int((end.Unix()-start.Unix())/secondsPerDay) + 1
	perWeek := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.Allows(d) {
			perWeek++
		}
	}
	weeks := span / 7
	count := weeks * perWeek

	day := start.AddDate(0, 0, weeks*7)
	for i := 0; i < span%7; i++ {
		if c.Allows(day.Weekday()) {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}

const secondsPerDay = 24 * 60 * 60

// civilDate returns midnight UTC of t's calendar date in t's own location.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
