package decompose

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Defaults applied by Repair.
const (
	DefaultDetails          = "No details provided"
	DefaultEstimatedMinutes = 60
	// MaxEstimatedMinutes caps a repaired estimate at 30 days of effort.
	MaxEstimatedMinutes = 30 * 24 * 60
	// maxPart bounds part numbers taken from candidates.
	maxPart = math.MaxInt32
	// defaultStagger spaces out default start times of consecutive candidates.
	defaultStagger = 2 * time.Hour
)

// Repair turns untrusted candidates into well-formed subtasks.
//
// Every field is checked on its own and replaced by a deterministic default
// when missing or invalid, so one bad field never discards a record.
// Assignees that are not team members are replaced round-robin by index.
// Estimates above MaxEstimatedMinutes are clamped to it.
// Timestamps are normalised to UTC. Repair never fails; members must be
// non-empty.
func Repair(candidates []Candidate, parts int, members []models.Member, c models.Constraints, now time.Time) []models.Subtask {
	if parts < 1 {
		parts = 1
	}
	perPart := float64(len(candidates)) / float64(parts)
	firstStart := time.Date(now.Year(), now.Month(), now.Day()+1, c.StartHour, 0, 0, 0, now.Location())

	names := make(map[string]bool, len(members))
	for _, m := range members {
		names[m.Name] = true
	}

	out := make([]models.Subtask, len(candidates))
	for i, cand := range candidates {
		t := models.Subtask{}

		if part, ok := intField(cand, "part"); ok && part >= 1 {
			t.Part = part
		} else {
			t.Part = int(math.Floor(float64(i)/perPart)) + 1
		}

		if title, ok := stringField(cand, "title"); ok {
			t.Title = title
		} else {
			t.Title = fmt.Sprintf("Task %d", i+1)
		}

		if details, ok := stringField(cand, "details", "description"); ok {
			t.Details = details
		} else {
			t.Details = DefaultDetails
		}

		if assignee, ok := stringField(cand, "assignee"); ok && names[assignee] {
			t.Assignee = assignee
		} else {
			t.Assignee = members[i%len(members)].Name
		}

		if minutes, ok := numberField(cand, "estimatedMinutes", "estimated_minutes"); ok && minutes >= 1 {
			t.EstimatedMinutes = int(math.Min(minutes, MaxEstimatedMinutes))
		} else {
			t.EstimatedMinutes = DefaultEstimatedMinutes
		}

		start, ok := timeField(cand, "start", "scheduledStart")
		if !ok {
			start = firstStart.Add(time.Duration(i) * defaultStagger)
		}
		end, ok := timeField(cand, "end", "scheduledEnd")
		if !ok {
			end = start.Add(t.Estimate())
		}
		t.Scheduled = &models.Slot{Start: start.UTC(), End: end.UTC()}

		out[i] = t
	}
	return out
}

// lookup returns the first present key, also searching a nested "scheduled"
// object so {"scheduled": {"start": ...}} is understood.
func lookup(c Candidate, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := c[k]; ok && v != nil {
			return v, true
		}
	}
	if nested, ok := c["scheduled"].(map[string]any); ok {
		for _, k := range keys {
			if v, ok := nested[k]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func stringField(c Candidate, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := c[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func numberField(c Candidate, keys ...string) (float64, bool) {
	for _, k := range keys {
		if n, ok := toNumber(c[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func intField(c Candidate, key string) (int, bool) {
	n, ok := toNumber(c[key])
	if !ok || n != math.Trunc(n) || math.Abs(n) > maxPart {
		return 0, false
	}
	return int(n), true
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func timeField(c Candidate, keys ...string) (time.Time, bool) {
	v, ok := lookup(c, keys...)
	if !ok {
		return time.Time{}, false
	}
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}
