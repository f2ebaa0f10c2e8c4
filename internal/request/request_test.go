package request

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

func testDefaults() Defaults {
	return Defaults{Parts: 1, Constraints: models.WeekdayConstraints()}
}

func TestParse_FullRequest(t *testing.T) {
	data := []byte(`
title: Lab report
description: Measure and write up
due: 2026-03-13T17:00:00Z
parts: 3
balance: true
members:
  - Alice
  - name: Bob
    role: Review
    id: b-1
constraints:
  work_hours_per_day: 4
  days_of_week: [mon, 3, Friday]
`)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	req, err := f.Resolve(testDefaults())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if req.Title != "Lab report" {
		t.Errorf("Title = %q, want %q", req.Title, "Lab report")
	}
	if req.Parts != 3 {
		t.Errorf("Parts = %d, want 3", req.Parts)
	}
	if !req.Balance {
		t.Error("Balance = false, want true")
	}
	wantDue := time.Date(2026, 3, 13, 17, 0, 0, 0, time.UTC)
	if !req.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", req.DueDate, wantDue)
	}
	if len(req.Members) != 2 {
		t.Fatalf("len(Members) = %d, want 2", len(req.Members))
	}
	if req.Members[0] != (models.Member{Name: "Alice"}) {
		t.Errorf("Members[0] = %+v, want bare Alice", req.Members[0])
	}
	if req.Members[1] != (models.Member{ID: "b-1", Name: "Bob", Role: "Review"}) {
		t.Errorf("Members[1] = %+v", req.Members[1])
	}

	c := req.Constraints
	if c.WorkHoursPerDay != 4 {
		t.Errorf("WorkHoursPerDay = %d, want 4", c.WorkHoursPerDay)
	}
	if c.StartHour != 9 || c.EndHour != 17 {
		t.Errorf("hours = %d-%d, want defaults 9-17", c.StartHour, c.EndHour)
	}
	wantDays := []int{1, 3, 5}
	got := c.Days()
	if len(got) != len(wantDays) {
		t.Fatalf("Days() = %v, want %v", got, wantDays)
	}
	for i := range wantDays {
		if got[i] != wantDays[i] {
			t.Errorf("Days() = %v, want %v", got, wantDays)
			break
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	f, err := Parse([]byte("title: Essay\ndue: 2026-03-20\nmembers: [Alice]\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	d := testDefaults()
	d.Parts = 2
	req, err := f.Resolve(d)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if req.Parts != 2 {
		t.Errorf("Parts = %d, want 2", req.Parts)
	}
	wantDue := time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)
	if !req.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", req.DueDate, wantDue)
	}
	if len(req.Constraints.DaysOfWeek) != 5 {
		t.Errorf("DaysOfWeek = %v, want Monday-Friday", req.Constraints.DaysOfWeek)
	}

	// Resolving must not alias the defaults' weekday slice.
	req.Constraints.DaysOfWeek[0] = time.Sunday
	if d.Constraints.DaysOfWeek[0] != time.Monday {
		t.Error("Resolve() shares DaysOfWeek with the defaults")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "empty", data: "", wantErr: "request is empty"},
		{name: "unknown key", data: "title: x\ndeadline: 2026-03-20\n", wantErr: "deadline"},
		{name: "bad day name", data: "constraints:\n  days_of_week: [funday]\n", wantErr: "unknown day"},
		{name: "day out of range", data: "constraints:\n  days_of_week: [7]\n", wantErr: "outside [0,6]"},
		{name: "days not a list", data: "constraints:\n  days_of_week: mon\n", wantErr: "must be a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{name: "missing due", data: "title: x\nmembers: [A]\n", wantField: "dueDate"},
		{name: "garbled due", data: "title: x\ndue: next week\nmembers: [A]\n", wantField: "dueDate"},
		{name: "no members", data: "title: x\ndue: 2026-03-20\n", wantField: "members"},
		{name: "no title", data: "due: 2026-03-20\nmembers: [A]\n", wantField: "title"},
		{name: "zero parts", data: "title: x\ndue: 2026-03-20\nparts: 0\nmembers: [A]\n", wantField: "parts"},
		{name: "inverted hours", data: "title: x\ndue: 2026-03-20\nmembers: [A]\nconstraints:\n  start_hour: 18\n", wantField: "startHour"},
		{name: "no days", data: "title: x\ndue: 2026-03-20\nmembers: [A]\nconstraints:\n  days_of_week: []\n", wantField: "daysOfWeek"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			_, err = f.Resolve(testDefaults())
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Resolve() error = %v, want *models.ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2026-03-20T17:00:00Z", want: time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)},
		{in: "2026-03-20T19:00:00+02:00", want: time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)},
		{in: " 2026-03-20 ", want: time.Date(2026, 3, 20, 16, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDue(tt.in, 16)
		if err != nil {
			t.Errorf("ParseDue(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(Example), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	req, err := f.Resolve(testDefaults())
	if err != nil {
		t.Fatalf("Resolve(Example) error = %v", err)
	}
	if len(req.Members) != 3 || req.Parts != 2 {
		t.Errorf("Example resolved to %d members, %d parts; want 3, 2", len(req.Members), req.Parts)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}
}

func TestParse_JSON(t *testing.T) {
	f, err := Parse([]byte(`{"title": "Poster", "due": "2026-03-20", "members": [{"name": "Dana"}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Title != "Poster" || len(f.Members) != 1 || f.Members[0].Name != "Dana" {
		t.Errorf("Parse() = %+v", f)
	}
}
