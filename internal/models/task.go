package models

import "time"

const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

const (
	PriorityUrgent    = "Urgent"
	PriorityImportant = "Important"
	PriorityRoutine   = "Routine"
)

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	// Notes is the text of the note attached to the task, nil when the
	// task has no live note. The note itself is stored as a separate row.
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
