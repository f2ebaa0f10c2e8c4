// Package request reads planning requests from YAML files.
package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/teamplan/internal/plan"
	"github.com/ShayCichocki/teamplan/pkg/models"
)

// File is the on-disk shape of a planning request. JSON files parse too.
type File struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Due         string           `yaml:"due"`
	Parts       *int             `yaml:"parts"`
	Balance     bool             `yaml:"balance"`
	Members     []Member         `yaml:"members"`
	Constraints *ConstraintOverrides `yaml:"constraints"`
}

// Member accepts either a bare name or a mapping with id, name and role.
type Member models.Member

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Member) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		m.Name = strings.TrimSpace(node.Value)
		return nil
	}
	var full struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		Role string `yaml:"role"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	*m = Member{ID: full.ID, Name: strings.TrimSpace(full.Name), Role: strings.TrimSpace(full.Role)}
	return nil
}

// ConstraintOverrides overrides individual working constraints. Unset fields
// keep the configured defaults.
type ConstraintOverrides struct {
	WorkHoursPerDay *int     `yaml:"work_hours_per_day"`
	StartHour       *int     `yaml:"start_hour"`
	EndHour         *int     `yaml:"end_hour"`
	DaysOfWeek      Weekdays `yaml:"days_of_week"`
}

// Weekdays is a list of days given as numbers (0 = Sunday) or names.
type Weekdays []time.Weekday

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Weekdays) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: days_of_week must be a list", node.Line)
	}
	days := make(Weekdays, 0, len(node.Content))
	for _, item := range node.Content {
		var n int
		if err := item.Decode(&n); err == nil {
			if n < 0 || n > 6 {
				return fmt.Errorf("line %d: day %d is outside [0,6]", item.Line, n)
			}
			days = append(days, time.Weekday(n))
			continue
		}
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(item.Value))]
		if !ok {
			return fmt.Errorf("line %d: unknown day %q", item.Line, item.Value)
		}
		days = append(days, d)
	}
	*w = days
	return nil
}

// Defaults fills in what a request file leaves out.
type Defaults struct {
	Parts       int
	Constraints models.Constraints
}

// Load reads and parses a request file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a request. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("request is empty")
		}
		return nil, err
	}
	return &f, nil
}

// Resolve applies defaults and produces a validated planning request.
func (f *File) Resolve(d Defaults) (plan.Request, error) {
	c := d.Constraints
	c.DaysOfWeek = append([]time.Weekday(nil), d.Constraints.DaysOfWeek...)
	if o := f.Constraints; o != nil {
		if o.WorkHoursPerDay != nil {
			c.WorkHoursPerDay = *o.WorkHoursPerDay
		}
		if o.StartHour != nil {
			c.StartHour = *o.StartHour
		}
		if o.EndHour != nil {
			c.EndHour = *o.EndHour
		}
		if o.DaysOfWeek != nil {
			days := make([]int, len(o.DaysOfWeek))
			for i, day := range o.DaysOfWeek {
				days[i] = int(day)
			}
			normalized, err := models.NewConstraints(c.WorkHoursPerDay, c.StartHour, c.EndHour, days)
			if err != nil {
				return plan.Request{}, err
			}
			c = normalized
		}
	}

	parts := d.Parts
	if f.Parts != nil {
		parts = *f.Parts
	}

	due, err := ParseDue(f.Due, c.EndHour)
	if err != nil {
		return plan.Request{}, err
	}

	members := make([]models.Member, len(f.Members))
	for i, m := range f.Members {
		members[i] = models.Member(m)
	}

	req := plan.Request{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		DueDate:     due,
		Parts:       parts,
		Members:     members,
		Constraints: c,
		Balance:     f.Balance,
	}
	if err := req.Validate(); err != nil {
		return plan.Request{}, err
	}
	return req, nil
}

// ParseDue reads an RFC 3339 timestamp, or a bare date meaning endHour:00
// UTC on that day.
func ParseDue(s string, endHour int) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &models.ValidationError{Field: "dueDate", Message: "must be set"}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), endHour, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, &models.ValidationError{
		Field:   "dueDate",
		Message: fmt.Sprintf("%q is neither an RFC 3339 timestamp nor a YYYY-MM-DD date", s),
	}
}

// Example is a commented request file written by "teamplan init".
const Example = `# teamplan request
title: Group research paper
description: |
  A 4000 word paper on urban heat islands, with a literature review,
  a small data analysis and a final presentation.
due: 2026-12-04T17:00:00Z
parts: 2
balance: false
members:
  - name: Alice
    role: Research
  - name: Bob
    role: Writing
  - name: Carol
    role: Review
# Omitted fields fall back to the "defaults" section of the config.
constraints:
  work_hours_per_day: 6
  start_hour: 9
  end_hour: 17
  days_of_week: [mon, tue, wed, thu, fri]
`
