package schedule

import (
	"sort"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Balance reassigns subtasks so every assignee ends up with a similar number
// of estimated minutes.
//
// Only names already present in the input take part. They are first ordered by
// their current load (ties keep first-seen order), then the subtasks are dealt
// out in input order, each one going to whoever has the least work so far.
// The spread between the busiest and the idlest member never exceeds the
// longest subtask. Roles are not considered. The input slice is not modified.
func Balance(subtasks []models.Subtask) []models.Subtask {
	out := make([]models.Subtask, len(subtasks))
	copy(out, subtasks)
	if len(out) == 0 {
		return out
	}

	var names []string
	current := make(map[string]int)
	for _, t := range out {
		if _, ok := current[t.Assignee]; !ok {
			names = append(names, t.Assignee)
		}
		current[t.Assignee] += t.EstimatedMinutes
	}
	sort.SliceStable(names, func(i, j int) bool {
		return current[names[i]] < current[names[j]]
	})

	load := make(map[string]int, len(names))
	for i := range out {
		name := names[0]
		out[i].Assignee = name
		load[name] += out[i].EstimatedMinutes
		sort.SliceStable(names, func(a, b int) bool {
			return load[names[a]] < load[names[b]]
		})
	}
	return out
}

// Workload returns the total estimated minutes per assignee.
func Workload(subtasks []models.Subtask) map[string]int {
	totals := make(map[string]int)
	for _, t := range subtasks {
		totals[t.Assignee] += t.EstimatedMinutes
	}
	return totals
}
