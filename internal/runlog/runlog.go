// Package runlog keeps a history of planning runs, successful or not.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one invocation of the planner.
type Run struct {
	ID           string
	Title        string
	RequestPath  string
	Status       string
	Source       string
	Subtasks     int
	Warnings     int
	Feasible     bool
	AssignmentID string
	// Error holds the validation or provider error, if any.
	Error     string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Duration returns how long the run took so far.
func (r *Run) Duration() time.Duration {
	return r.UpdatedAt.Sub(r.StartedAt)
}

// Store persists runs.
type Store struct {
	db *sql.DB
}

// Open creates a Store with the given database path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create runlog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS plan_runs (
			id TEXT PRIMARY KEY,
			title TEXT,
			request_path TEXT,
			status TEXT,
			source TEXT,
			subtasks INT,
			warnings INT,
			feasible BOOLEAN,
			assignment_id TEXT,
			error TEXT,
			started_at DATETIME,
			updated_at DATETIME
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Start records the beginning of a run.
func (s *Store) Start(title, requestPath string) (*Run, error) {
	now := time.Now()
	run := &Run{
		ID:          uuid.New().String(),
		Title:       title,
		RequestPath: requestPath,
		Status:      StatusRunning,
		StartedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(`
		INSERT INTO plan_runs (id, title, request_path, status, source, subtasks, warnings, feasible,
			assignment_id, error, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Title, run.RequestPath, run.Status, run.Source, run.Subtasks, run.Warnings, run.Feasible,
		run.AssignmentID, run.Error, run.StartedAt, run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return run, nil
}

// Finish stores the final state of a run.
func (s *Store) Finish(run *Run) error {
	run.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE plan_runs
		SET title = ?, status = ?, source = ?, subtasks = ?, warnings = ?, feasible = ?,
			assignment_id = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, run.Title, run.Status, run.Source, run.Subtasks, run.Warnings, run.Feasible,
		run.AssignmentID, run.Error, run.UpdatedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}

	return nil
}

const runColumns = `id, title, request_path, status, source, subtasks, warnings, feasible,
	assignment_id, error, started_at, updated_at`

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM plan_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first, at most limit of them.
// A limit of zero or less returns every run.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM plan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Delete removes a run by ID.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM plan_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var requestPath, source, assignmentID, errText sql.NullString
	err := row.Scan(
		&run.ID,
		&run.Title,
		&requestPath,
		&run.Status,
		&source,
		&run.Subtasks,
		&run.Warnings,
		&run.Feasible,
		&assignmentID,
		&errText,
		&run.StartedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.RequestPath = requestPath.String
	run.Source = source.String
	run.AssignmentID = assignmentID.String
	run.Error = errText.String
	return &run, nil
}
