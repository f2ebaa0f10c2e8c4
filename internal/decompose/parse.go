package decompose

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Candidate is one loosely-typed subtask record from a provider.
// Any field may be missing or carry the wrong type.
type Candidate map[string]any

// ParseResponse extracts the JSON array of candidate subtasks from a
// provider's free-form text response.
func ParseResponse(response string) ([]Candidate, error) {
	jsonStart := strings.Index(response, "[")
	jsonEnd := strings.LastIndex(response, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		preview := response
		if len(preview) > 500 {
			preview = preview[:500] + "... (truncated)"
		}
		return nil, fmt.Errorf("no valid JSON array found in response (got %d chars): %q", len(response), preview)
	}
	jsonStr := response[jsonStart : jsonEnd+1]

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty task list returned")
	}

	candidates := make([]Candidate, len(raw))
	for i, item := range raw {
		var c Candidate
		if err := json.Unmarshal(item, &c); err != nil {
			return nil, fmt.Errorf("task %d is not an object: %w", i, err)
		}
		if c == nil {
			c = Candidate{}
		}
		candidates[i] = c
	}
	return candidates, nil
}

// ToCandidates renders subtasks back into candidate records, the same shape
// a provider returns. Repairing the result yields the original subtasks.
func ToCandidates(subtasks []models.Subtask) []Candidate {
	out := make([]Candidate, len(subtasks))
	for i, t := range subtasks {
		c := Candidate{
			"part":             t.Part,
			"title":            t.Title,
			"details":          t.Details,
			"assignee":         t.Assignee,
			"estimatedMinutes": t.EstimatedMinutes,
		}
		if t.Scheduled != nil {
			c["start"] = t.Scheduled.Start.UTC().Format(time.RFC3339Nano)
			c["end"] = t.Scheduled.End.UTC().Format(time.RFC3339Nano)
		}
		out[i] = c
	}
	return out
}
