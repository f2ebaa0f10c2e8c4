package models

import "time"

// Member is a person that subtasks can be assigned to.
type Member struct {
	// ID is an optional caller-owned identifier.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Name identifies the member within a planning request.
	Name string `json:"name" yaml:"name"`
	// Role is an optional free-form role such as "Research" or "Review".
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Slot is a scheduled time interval on the planning timeline.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the slot.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps returns true if the two slots share any instant.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Subtask is one decomposed, assignable and schedulable unit of an assignment.
type Subtask struct {
	// Part groups subtasks into phases of the assignment (1-based).
	Part int `json:"part"`
	// Title is the short description of the subtask.
	Title string `json:"title"`
	// Details provides the longer description.
	Details string `json:"details"`
	// Assignee is the name of the member doing the work.
	Assignee string `json:"assignee"`
	// EstimatedMinutes is the time-box for the subtask.
	EstimatedMinutes int `json:"estimatedMinutes"`
	// Scheduled is set once the scheduler has placed the subtask.
	Scheduled *Slot `json:"scheduled,omitempty"`
}

// Estimate returns EstimatedMinutes as a duration.
func (t Subtask) Estimate() time.Duration {
	return time.Duration(t.EstimatedMinutes) * time.Minute
}

// IsScheduled returns true if the subtask has a calendar slot.
func (t Subtask) IsScheduled() bool {
	return t.Scheduled != nil
}

// FeasibilityReport compares required effort with available capacity.
type FeasibilityReport struct {
	Feasible       bool    `json:"feasible"`
	RequiredHours  float64 `json:"requiredHours"`
	AvailableHours float64 `json:"availableHours"`
}

// WarningKind classifies a feasibility warning raised while scheduling.
type WarningKind string

const (
	// WarningPastSafetyMargin marks a subtask starting inside the final day before the deadline.
	WarningPastSafetyMargin WarningKind = "past_safety_margin"
	// WarningPastDeadline marks a subtask ending after the deadline.
	WarningPastDeadline WarningKind = "past_deadline"
)

// FeasibilityWarning flags a scheduled subtask that puts the deadline at risk.
// Warnings are informational and never block scheduling.
type FeasibilityWarning struct {
	Kind     WarningKind `json:"kind"`
	Part     int         `json:"part"`
	Title    string      `json:"title"`
	Assignee string      `json:"assignee"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Message  string      `json:"message"`
}
