package monitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderEvictsOldestAtCapacity(t *testing.T) {
	r := NewRecorder(3)

	for i := 0; i < 5; i++ {
		r.Record("error", fmt.Sprintf("message %d", i), "")
	}

	entries := r.Snapshot()
	require.Len(t, entries, 3)
	assert.Equal(t, "message 2", entries[0].Message)
	assert.Equal(t, "message 4", entries[2].Message)
}

func TestRecorderClear(t *testing.T) {
	r := NewRecorder(3)
	r.Record("security", "event", "detail")
	require.Len(t, r.Snapshot(), 1)

	r.Clear()
	assert.Empty(t, r.Snapshot())
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Record("error", "dropped", "")
	assert.Nil(t, r.Snapshot())
	r.Clear()
}

func TestRecorderDefaultCapacity(t *testing.T) {
	r := NewRecorder(0)
	for i := 0; i < DefaultCapacity+10; i++ {
		r.Record("error", "m", "")
	}
	assert.Len(t, r.Snapshot(), DefaultCapacity)
}
