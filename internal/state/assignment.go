package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// Assignment is a stored planning request and its feasibility outcome.
type Assignment struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	DueDate     time.Time                `json:"due_date"`
	Parts       int                      `json:"parts"`
	Members     []models.Member          `json:"members"`
	Constraints models.Constraints       `json:"constraints"`
	Source      string                   `json:"source"`
	Report      models.FeasibilityReport `json:"report"`
	CreatedAt   time.Time                `json:"created_at"`
}

// Task is a stored subtask.
type Task struct {
	ID               string    `json:"id"`
	AssignmentID     string    `json:"assignment_id"`
	Position         int       `json:"position"`
	Part             int       `json:"part"`
	Title            string    `json:"title"`
	Details          string    `json:"details"`
	Assignee         string    `json:"assignee"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

// CalendarEvent is the calendar entry derived from a scheduled task.
type CalendarEvent struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	AssignmentID string    `json:"assignment_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Assignee     string    `json:"assignee"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// SaveAssignment stores the assignment with one task per subtask and one
// calendar event per scheduled subtask, all in a single transaction.
// Empty IDs and creation times are filled in on a.
func (db *DB) SaveAssignment(a *Assignment, subtasks []models.Subtask) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	members, err := json.Marshal(a.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	constraints, err := json.Marshal(a.Constraints)
	if err != nil {
		return fmt.Errorf("marshal constraints: %w", err)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO assignments (id, title, description, due_date, parts, members, constraints,
				source, feasible, required_hours, available_hours, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.Title, a.Description, formatTime(a.DueDate), a.Parts, string(members), string(constraints),
			a.Source, a.Report.Feasible, a.Report.RequiredHours, a.Report.AvailableHours, formatTime(a.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}

		for i, st := range subtasks {
			taskID := uuid.New().String()
			_, err := tx.Exec(`
				INSERT INTO tasks (id, assignment_id, position, part, title, details, assignee, estimated_minutes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, taskID, a.ID, i, st.Part, st.Title, st.Details, st.Assignee, st.EstimatedMinutes, formatTime(a.CreatedAt))
			if err != nil {
				return fmt.Errorf("insert task %d: %w", i, err)
			}

			if !st.IsScheduled() {
				continue
			}
			_, err = tx.Exec(`
				INSERT INTO calendar_events (id, task_id, assignment_id, title, description, assignee, start_time, end_time)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.New().String(), taskID, a.ID, st.Title, st.Details, st.Assignee,
				formatTime(st.Scheduled.Start), formatTime(st.Scheduled.End))
			if err != nil {
				return fmt.Errorf("insert calendar event %d: %w", i, err)
			}
		}
		return nil
	})
}

const assignmentColumns = `id, title, description, due_date, parts, members, constraints,
	source, feasible, required_hours, available_hours, created_at`

// GetAssignment retrieves an assignment by ID. It returns nil, nil when the
// assignment does not exist.
func (db *DB) GetAssignment(id string) (*Assignment, error) {
	row := db.QueryRow("SELECT "+assignmentColumns+" FROM assignments WHERE id = ?", id)

	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListAssignments returns the most recent assignments first.
// A limit of zero or less returns all of them.
func (db *DB) ListAssignments(limit int) ([]Assignment, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query("SELECT "+assignmentColumns+" FROM assignments ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// DeleteAssignment removes an assignment together with its tasks and events.
func (db *DB) DeleteAssignment(id string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM calendar_events WHERE assignment_id = ?", id); err != nil {
			return fmt.Errorf("delete calendar events: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM tasks WHERE assignment_id = ?", id); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		res, err := tx.Exec("DELETE FROM assignments WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete assignment: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("assignment %s not found", id)
		}
		return nil
	})
}

// ListTasks returns the tasks of an assignment in their original order.
func (db *DB) ListTasks(assignmentID string) ([]Task, error) {
	rows, err := db.Query(`
		SELECT id, assignment_id, position, part, title, details, assignee, estimated_minutes, created_at
		FROM tasks WHERE assignment_id = ? ORDER BY position
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		var createdAt string
		if err := rows.Scan(&t.ID, &t.AssignmentID, &t.Position, &t.Part, &t.Title, &t.Details,
			&t.Assignee, &t.EstimatedMinutes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.CreatedAt, _ = parseTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEvents returns the calendar events of an assignment ordered by start.
func (db *DB) ListEvents(assignmentID string) ([]CalendarEvent, error) {
	rows, err := db.Query(`
		SELECT id, task_id, assignment_id, title, description, assignee, start_time, end_time
		FROM calendar_events WHERE assignment_id = ? ORDER BY start_time, assignee
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		var start, end string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.AssignmentID, &e.Title, &e.Description,
			&e.Assignee, &start, &end); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("parse event start: %w", err)
		}
		if e.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("parse event end: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*Assignment, error) {
	var a Assignment
	var due, createdAt, members, constraints string
	err := row.Scan(&a.ID, &a.Title, &a.Description, &due, &a.Parts, &members, &constraints,
		&a.Source, &a.Report.Feasible, &a.Report.RequiredHours, &a.Report.AvailableHours, &createdAt)
	if err != nil {
		return nil, err
	}

	if a.DueDate, err = parseTime(due); err != nil {
		return nil, fmt.Errorf("parse due date: %w", err)
	}
	a.CreatedAt, _ = parseTime(createdAt)
	if err := json.Unmarshal([]byte(members), &a.Members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	if err := json.Unmarshal([]byte(constraints), &a.Constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints: %w", err)
	}
	return &a, nil
}

// LoadSubtasks rebuilds the planned subtasks of an assignment in their
// original order, attaching each task's calendar slot when it has one.
func (db *DB) LoadSubtasks(assignmentID string) ([]models.Subtask, error) {
	tasks, err := db.ListTasks(assignmentID)
	if err != nil {
		return nil, err
	}
	events, err := db.ListEvents(assignmentID)
	if err != nil {
		return nil, err
	}

	slots := make(map[string]*models.Slot, len(events))
	for _, e := range events {
		slots[e.TaskID] = &models.Slot{Start: e.Start, End: e.End}
	}

	out := make([]models.Subtask, len(tasks))
	for i, t := range tasks {
		out[i] = models.Subtask{
			Part:             t.Part,
			Title:            t.Title,
			Details:          t.Details,
			Assignee:         t.Assignee,
			EstimatedMinutes: t.EstimatedMinutes,
			Scheduled:        slots[t.ID],
		}
	}
	return out, nil
}
