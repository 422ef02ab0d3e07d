package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
)

func TestDecideWrite(t *testing.T) {
	assert.Equal(t, WriteNone, DecideWrite(false, ""))
	assert.Equal(t, WriteNone, DecideWrite(false, "   "))
	assert.Equal(t, WriteInsert, DecideWrite(false, "remember the milk"))
	assert.Equal(t, WriteUpdate, DecideWrite(true, "updated text"))
	assert.Equal(t, WriteDelete, DecideWrite(true, ""))
	assert.Equal(t, WriteDelete, DecideWrite(true, "  "))
}

func TestMergeAttachesNotesByTaskID(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{
		{ID: "t1"},
		{ID: "t2"},
	}
	rows := []map[string]any{
		{"task_id": "t1", "notes": "first note"},
	}

	merged := engine.Merge(tasks, rows)
	require.Len(t, merged, 2)
	require.NotNil(t, merged[0].Notes)
	assert.Equal(t, "first note", *merged[0].Notes)
	assert.Nil(t, merged[1].Notes)
}

func TestMergeFallsBackThroughCandidateFields(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{{ID: "t1"}}
	rows := []map[string]any{
		{"task_id": "t1", "content": "stored under content"},
	}

	merged := engine.Merge(tasks, rows)
	require.NotNil(t, merged[0].Notes)
	assert.Equal(t, "stored under content", *merged[0].Notes)
	assert.Equal(t, "content", engine.ResolvedField())
}

func TestMergeUsesCachedFieldUntilReset(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{{ID: "t1"}}

	engine.Merge(tasks, []map[string]any{
		{"task_id": "t1", "content": "resolved once"},
	})
	require.Equal(t, "content", engine.ResolvedField())

	// A row that only carries a different candidate no longer matches.
	merged := engine.Merge(tasks, []map[string]any{
		{"task_id": "t1", "body": "under another column"},
	})
	assert.Nil(t, merged[0].Notes)

	engine.Reset()
	assert.Empty(t, engine.ResolvedField())

	merged = engine.Merge(tasks, []map[string]any{
		{"task_id": "t1", "body": "under another column"},
	})
	require.NotNil(t, merged[0].Notes)
	assert.Equal(t, "under another column", *merged[0].Notes)
}

func TestMergeFirstRowPerTaskWins(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{{ID: "t1"}}
	rows := []map[string]any{
		{"task_id": "t1", "notes": "first"},
		{"task_id": "t1", "notes": "second"},
	}

	merged := engine.Merge(tasks, rows)
	require.NotNil(t, merged[0].Notes)
	assert.Equal(t, "first", *merged[0].Notes)
}

func TestMergeSkipsUnusableRows(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{{ID: "t1"}}
	rows := []map[string]any{
		{"notes": "no task reference"},
		{"task_id": "t1", "unknown_column": "never probed"},
		{"task_id": "t1", "notes": ""},
	}

	merged := engine.Merge(tasks, rows)
	assert.Nil(t, merged[0].Notes)
}

func TestMergeNormalizesTaskIDTypes(t *testing.T) {
	engine := NewEngine()
	tasks := []*models.Task{
		{ID: "7"},
		{ID: "42"},
	}
	rows := []map[string]any{
		{"task_id": int64(7), "notes": "by int64"},
		{"task_id": int32(42), "notes": "by int32"},
	}

	merged := engine.Merge(tasks, rows)
	require.NotNil(t, merged[0].Notes)
	assert.Equal(t, "by int64", *merged[0].Notes)
	require.NotNil(t, merged[1].Notes)
	assert.Equal(t, "by int32", *merged[1].Notes)
}

func TestMergeResultClearsNotesOnFailure(t *testing.T) {
	engine := NewEngine()
	stale := "stale note"
	tasks := []*models.Task{
		{ID: "t1", Notes: &stale},
		{ID: "t2"},
	}

	merged := engine.MergeResult(tasks, nil, errors.New("note query failed"))
	require.Len(t, merged, 2)
	assert.Nil(t, merged[0].Notes)
	assert.Nil(t, merged[1].Notes)
}
