package models

import "time"

// Note is a free-text annotation attached to exactly one task.
// At most one live note per task, enforced by the service layer.
type Note struct {
	ID        string
	TaskID    string
	UserID    string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
