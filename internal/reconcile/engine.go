package reconcile

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskdesk/internal/models"
)

// DefaultNoteFields is the probing order for the note text column. The
// backing table's schema is not under this client's control, so the read
// path tolerates any of these names; the write path targets a single
// designated column.
var DefaultNoteFields = []string{"notes", "note", "content", "text", "description", "body"}

// WriteOp is the strategy for persisting a task's note text.
type WriteOp int

const (
	WriteNone WriteOp = iota
	WriteInsert
	WriteUpdate
	WriteDelete
)

// DecideWrite picks the note write strategy: replace an existing row in
// place, delete it when the new text is empty, insert when there is text
// but no row yet.
func DecideWrite(hasExisting bool, text string) WriteOp {
	empty := strings.TrimSpace(text) == ""
	switch {
	case hasExisting && empty:
		return WriteDelete
	case hasExisting:
		return WriteUpdate
	case empty:
		return WriteNone
	default:
		return WriteInsert
	}
}

// Engine merges task rows with loosely-schemed note rows. The note text
// field is resolved once against the candidate list and cached until
// Reset, instead of being re-probed on every read.
type Engine struct {
	mu         sync.Mutex
	candidates []string
	resolved   string
}

func NewEngine(candidates ...string) *Engine {
	if len(candidates) == 0 {
		candidates = DefaultNoteFields
	}
	return &Engine{candidates: candidates}
}

// Merge attaches at most one note's text to each task. When several note
// rows reference the same task, the first in encounter order wins. Rows
// without a resolvable text field or a task reference are skipped.
func (e *Engine) Merge(tasks []*models.Task, noteRows []map[string]any) []*models.Task {
	textByTask := make(map[string]string, len(noteRows))
	for _, row := range noteRows {
		taskID, ok := rowTaskID(row)
		if !ok {
			continue
		}
		if _, seen := textByTask[taskID]; seen {
			continue
		}
		if text, ok := e.noteText(row); ok {
			textByTask[taskID] = text
		}
	}

	for _, task := range tasks {
		if text, ok := textByTask[task.ID]; ok {
			task.Notes = &text
		} else {
			task.Notes = nil
		}
	}
	return tasks
}

// MergeResult is Merge with partial-failure tolerance: when the note
// query failed, every task is returned with no note attached instead of
// failing the whole read.
func (e *Engine) MergeResult(tasks []*models.Task, noteRows []map[string]any, notesErr error) []*models.Task {
	if notesErr != nil {
		for _, task := range tasks {
			task.Notes = nil
		}
		return tasks
	}
	return e.Merge(tasks, noteRows)
}

// ResolvedField returns the cached note text field, empty if none has
// been resolved yet.
func (e *Engine) ResolvedField() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolved
}

// Reset clears the cached field so the next read re-probes.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolved = ""
}

func (e *Engine) noteText(row map[string]any) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resolved != "" {
		return nonEmptyString(row[e.resolved])
	}
	for _, candidate := range e.candidates {
		if text, ok := nonEmptyString(row[candidate]); ok {
			e.resolved = candidate
			return text, true
		}
	}
	return "", false
}

func nonEmptyString(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// rowTaskID normalizes the foreign key to a string across the driver
// representations a generic row scan can produce.
func rowTaskID(row map[string]any) (string, bool) {
	switch v := row["task_id"].(type) {
	case string:
		return v, v != ""
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case [16]byte:
		return uuid.UUID(v).String(), true
	default:
		return "", false
	}
}
