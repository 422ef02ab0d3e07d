package monitor

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the number of retained records.
const DefaultCapacity = 50

type Entry struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

// Recorder keeps a bounded ring of error and security records for
// diagnostics. A nil Recorder is valid and drops everything, so callers
// can hold an optional recorder without nil checks.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

func (r *Recorder) Record(kind, message, detail string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:r.capacity-1]
	}
	r.entries = append(r.entries, Entry{
		Kind:    kind,
		Message: message,
		Detail:  detail,
		At:      time.Now(),
	})
}

// Snapshot returns the retained records, oldest first.
func (r *Recorder) Snapshot() []Entry {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}
