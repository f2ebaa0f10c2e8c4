package decompose

import (
	"fmt"
	"strings"
	"time"
)

// decompositionPrompt is the prompt template for assignment decomposition.
const decompositionPrompt = `Break this assignment into subtasks for a small team. Each subtask should be sized for one person to finish in a single sitting.

Assignment: %s
Description:
%s

Due: %s
Number of parts: %d
Working hours: %02d:00-%02d:00, %d hours per day, on %s

Team members:
%s
Return ONLY a JSON array of subtasks with this exact structure (no other text):
[
  {
    "part": 1,
    "title": "Short subtask title",
    "details": "What needs to be done and what the result is",
    "assignee": "Exact name of a team member",
    "estimatedMinutes": 90
  }
]

Guidelines:
- Use part numbers 1 to %d to group subtasks into phases, earlier phases first
- Assign every subtask to one of the listed team members, using the exact name
- Prefer members whose role fits the subtask
- Spread the work evenly across the team
- estimatedMinutes must be a positive whole number; keep single subtasks under a working day
- The total effort must fit comfortably before the due date`

// BuildPrompt renders the provider prompt for an assignment.
func BuildPrompt(in Input) string {
	var members strings.Builder
	for _, m := range in.Members {
		if m.Role != "" {
			fmt.Fprintf(&members, "- %s (%s)\n", m.Name, m.Role)
		} else {
			fmt.Fprintf(&members, "- %s\n", m.Name)
		}
	}

	days := make([]string, len(in.Constraints.DaysOfWeek))
	for i, d := range in.Constraints.DaysOfWeek {
		days[i] = d.String()
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = "(none)"
	}

	return fmt.Sprintf(decompositionPrompt,
		in.Title,
		description,
		in.DueDate.UTC().Format(time.RFC3339),
		in.Parts,
		in.Constraints.StartHour,
		in.Constraints.EndHour,
		in.Constraints.WorkHoursPerDay,
		strings.Join(days, ", "),
		members.String(),
		in.Parts,
	)
}
