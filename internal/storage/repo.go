package storage

import (
	"context"
	"errors"
	"time"

	"taskdesk/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskRepository is the remote table interface for tasks and their notes.
// All task operations are scoped by the owning user. Note rows are
// returned as generic maps because the note table's schema has drifted
// and the text column name is probed by the reconcile engine.
type TaskRepository interface {
	SelectTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error)
	InsertTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	UpdateTaskStatus(ctx context.Context, taskID, userID, status string, updatedAt time.Time) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID, userID string) error

	SelectNoteRows(ctx context.Context, userID string, taskIDs []string) ([]map[string]any, error)
	SelectNoteIDByTaskID(ctx context.Context, taskID, userID string) (string, bool, error)
	InsertNote(ctx context.Context, note *models.Note) error
	UpdateNoteText(ctx context.Context, noteID, text string, updatedAt time.Time) error
	DeleteNote(ctx context.Context, noteID string) error
}
