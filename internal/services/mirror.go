package services

import (
	"sync"
	"time"

	"taskdesk/internal/models"
)

// taskMirror is the in-memory copy of the last known-good server state,
// newest task first. Mutated only after a successful remote operation,
// except the full-fetch failure path which resets it to empty.
type taskMirror struct {
	mu    sync.RWMutex
	tasks []*models.Task
}

func (m *taskMirror) snapshot() []*models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *taskMirror) replace(tasks []*models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = tasks
}

func (m *taskMirror) prepend(task *models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]*models.Task{task}, m.tasks...)
}

func (m *taskMirror) upsert(task *models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tasks {
		if t.ID == task.ID {
			m.tasks[i] = task
			return
		}
	}
	m.tasks = append([]*models.Task{task}, m.tasks...)
}

func (m *taskMirror) setStatus(taskID, status string, updatedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if t.ID == taskID {
			t.Status = status
			t.UpdatedAt = updatedAt
			return
		}
	}
}

func (m *taskMirror) remove(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tasks {
		if t.ID == taskID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}
