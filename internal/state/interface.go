package state

import (
	"io"

	"github.com/ShayCichocki/teamplan/pkg/models"
)

// AssignmentStore handles assignment persistence.
type AssignmentStore interface {
	SaveAssignment(a *Assignment, subtasks []models.Subtask) error
	GetAssignment(id string) (*Assignment, error)
	ListAssignments(limit int) ([]Assignment, error)
	DeleteAssignment(id string) error
}

// ScheduleStore reads the tasks and calendar events of an assignment.
type ScheduleStore interface {
	ListTasks(assignmentID string) ([]Task, error)
	ListEvents(assignmentID string) ([]CalendarEvent, error)
	LoadSubtasks(assignmentID string) ([]models.Subtask, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store is the full persistence surface used by the CLI.
type Store interface {
	io.Closer
	Migrator
	AssignmentStore
	ScheduleStore
}

var (
	_ Store           = (*DB)(nil)
	_ AssignmentStore = (*DB)(nil)
	_ ScheduleStore   = (*DB)(nil)
)
