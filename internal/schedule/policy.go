// Package schedule places subtasks on the calendar, balances workload between
// members and checks whether a plan fits before its deadline.
package schedule

import "time"

// Policy constants. Changing any of these changes scheduling output.
const (
	// DefaultBuffer is the gap left between two consecutive subtasks of one member.
	DefaultBuffer = 15 * time.Minute
	// DefaultDeadlineMargin is how close to the deadline a subtask may start
	// before a feasibility warning is raised.
	DefaultDeadlineMargin = 24 * time.Hour
	// DefaultUtilizationLimit is the share of available capacity a plan may use
	// and still count as feasible. The rest is reserved for buffers and slippage.
	DefaultUtilizationLimit = 0.8
)

// Policy holds the tunable scheduling rules.
type Policy struct {
	Buffer           time.Duration
	DeadlineMargin   time.Duration
	UtilizationLimit float64
}

// DefaultPolicy returns the standard scheduling rules.
func DefaultPolicy() Policy {
	return Policy{
		Buffer:           DefaultBuffer,
		DeadlineMargin:   DefaultDeadlineMargin,
		UtilizationLimit: DefaultUtilizationLimit,
	}
}

// withDefaults fills zero fields with the standard values.
func (p Policy) withDefaults() Policy {
	if p.Buffer <= 0 {
		p.Buffer = DefaultBuffer
	}
	if p.DeadlineMargin <= 0 {
		p.DeadlineMargin = DefaultDeadlineMargin
	}
	if p.UtilizationLimit <= 0 {
		p.UtilizationLimit = DefaultUtilizationLimit
	}
	return p
}

// tomorrowAt returns the calendar day after now at the given hour.
func tomorrowAt(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
}
