package models

import (
	"fmt"
	"sort"
	"time"
)

// Constraints describes when team members are allowed to work.
// Values are built with NewConstraints and never modified afterwards.
type Constraints struct {
	// WorkHoursPerDay is the number of hours a member works on a working day.
	WorkHoursPerDay int `json:"workHoursPerDay" yaml:"work_hours_per_day"`
	// StartHour is the first hour of the working window (0-23).
	StartHour int `json:"startHour" yaml:"start_hour"`
	// EndHour is the hour the working window closes (0-23, exclusive).
	EndHour int `json:"endHour" yaml:"end_hour"`
	// DaysOfWeek lists allowed weekdays, sorted and de-duplicated.
	DaysOfWeek []time.Weekday `json:"daysOfWeek" yaml:"days_of_week"`
}

// NewConstraints validates the given bounds and returns a Constraints value.
func NewConstraints(workHoursPerDay, startHour, endHour int, days []int) (Constraints, error) {
	weekdays := make([]time.Weekday, 0, len(days))
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return Constraints{}, &ValidationError{
				Field:   "daysOfWeek",
				Message: fmt.Sprintf("day %d is outside [0,6]", d),
			}
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		weekdays = append(weekdays, time.Weekday(d))
	}
	sort.Slice(weekdays, func(i, j int) bool { return weekdays[i] < weekdays[j] })

	c := Constraints{
		WorkHoursPerDay: workHoursPerDay,
		StartHour:       startHour,
		EndHour:         endHour,
		DaysOfWeek:      weekdays,
	}
	if err := c.Validate(); err != nil {
		return Constraints{}, err
	}
	return c, nil
}

// WeekdayConstraints returns the common Monday-Friday, 9:00-17:00 policy.
func WeekdayConstraints() Constraints {
	return Constraints{
		WorkHoursPerDay: 8,
		StartHour:       9,
		EndHour:         17,
		DaysOfWeek:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

// Validate reports whether the constraints describe a usable working window.
func (c Constraints) Validate() error {
	if c.WorkHoursPerDay <= 0 {
		return &ValidationError{Field: "workHoursPerDay", Message: "must be greater than zero"}
	}
	if c.StartHour < 0 || c.StartHour > 23 {
		return &ValidationError{Field: "startHour", Message: fmt.Sprintf("%d is outside [0,23]", c.StartHour)}
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		return &ValidationError{Field: "endHour", Message: fmt.Sprintf("%d is outside [0,23]", c.EndHour)}
	}
	if c.StartHour >= c.EndHour {
		return &ValidationError{
			Field:   "startHour",
			Message: fmt.Sprintf("start hour %d must be before end hour %d", c.StartHour, c.EndHour),
		}
	}
	if len(c.DaysOfWeek) == 0 {
		return &ValidationError{Field: "daysOfWeek", Message: "at least one working day is required"}
	}
	for _, d := range c.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return &ValidationError{Field: "daysOfWeek", Message: fmt.Sprintf("day %d is outside [0,6]", int(d))}
		}
	}
	return nil
}

// Allows returns true if members may work on the given weekday.
func (c Constraints) Allows(d time.Weekday) bool {
	for _, allowed := range c.DaysOfWeek {
		if allowed == d {
			return true
		}
	}
	return false
}

// Days returns the allowed weekdays as plain integers (Sunday = 0).
func (c Constraints) Days() []int {
	days := make([]int, len(c.DaysOfWeek))
	for i, d := range c.DaysOfWeek {
		days[i] = int(d)
	}
	return days
}
