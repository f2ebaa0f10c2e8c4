package decompose

import (
	"fmt"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Fallback sizing rules.
const (
	// taskBudget is spread across parts: each part gets taskBudget/parts subtasks.
	taskBudget = 8
	// MinTasksPerPart is the floor on subtasks generated for one part.
	MinTasksPerPart = 2
	// MaxTasksPerMemberPerPart caps a part at this many subtasks per member.
	MaxTasksPerMemberPerPart = 2
)

// Archetype is one step of the fallback work template.
type Archetype struct {
	Name        string
	Description string
	Minutes     int
}

// archetypes is the fixed template cycled through for every part.
var archetypes = []Archetype{
	{Name: "Research and Planning", Description: "Gather sources, define scope and plan the approach", Minutes: 120},
	{Name: "Analysis and Investigation", Description: "Analyze the gathered material and investigate open questions", Minutes: 180},
	{Name: "Development and Creation", Description: "Develop and create the main deliverable", Minutes: 240},
	{Name: "Review and Testing", Description: "Review the work and test it against the requirements", Minutes: 90},
	{Name: "Documentation", Description: "Document decisions, results and remaining issues", Minutes: 60},
	{Name: "Finalization", Description: "Polish, assemble and prepare the final submission", Minutes: 60},
}

// Archetypes returns a copy of the fallback template.
func Archetypes() []Archetype {
	out := make([]Archetype, len(archetypes))
	copy(out, archetypes)
	return out
}

// Fallback generates subtasks from a fixed template, without any external call.
type Fallback struct{}

// NewFallback creates a Fallback generator.
func NewFallback() *Fallback {
	return &Fallback{}
}

// TasksPerPart returns how many subtasks each part receives.
func TasksPerPart(parts, memberCount int) int {
	if parts < 1 {
		parts = 1
	}
	n := taskBudget / parts
	if limit := MaxTasksPerMemberPerPart * memberCount; n > limit {
		n = limit
	}
	if n < MinTasksPerPart {
		n = MinTasksPerPart
	}
	return n
}

// Generate builds unscheduled subtasks for every part of the assignment.
// Members are assigned round-robin, except that a subtask goes to the first
// member whose role fits its title and details. members must be non-empty.
func (f *Fallback) Generate(title, description string, parts int, members []models.Member) []models.Subtask {
	if parts < 1 {
		parts = 1
	}
	perPart := TasksPerPart(parts, len(members))

	subtasks := make([]models.Subtask, 0, parts*perPart)
	for part := 1; part <= parts; part++ {
		for k := 0; k < perPart; k++ {
			a := archetypes[k%len(archetypes)]
			t := models.Subtask{
				Part:             part,
				Title:            fmt.Sprintf("Part %d: %s", part, a.Name),
				Details:          fmt.Sprintf("%s for %s", a.Description, title),
				EstimatedMinutes: a.Minutes,
			}
			t.Assignee = pickAssignee(members, len(subtasks), t.Title+" "+t.Details)
			subtasks = append(subtasks, t)
		}
	}
	return subtasks
}

// pickAssignee prefers the first role match and otherwise rotates by index.
func pickAssignee(members []models.Member, index int, text string) string {
	for _, m := range members {
		if RoleMatches(m.Role, text) {
			return m.Name
		}
	}
	return members[index%len(members)].Name
}
