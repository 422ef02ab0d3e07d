package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir(), "test")
	require.NoError(t, err)

	require.NoError(t, store.Put("k1", testRecord{Name: "a", Count: 3}))

	var got testRecord
	ok, err := store.Get("k1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testRecord{Name: "a", Count: 3}, got)

	ok, err = store.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir, "test")
	require.NoError(t, err)
	require.NoError(t, store.Put("k1", testRecord{Name: "a", Count: 1}))

	reopened, err := Open(dir, "test")
	require.NoError(t, err)

	var got testRecord
	ok, err := reopened.Get("k1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)
}

func TestStoreDelete(t *testing.T) {
	store, err := Open(t.TempDir(), "test")
	require.NoError(t, err)

	require.NoError(t, store.Put("k1", 1))
	require.NoError(t, store.Delete("k1"))
	require.NoError(t, store.Delete("k1"))

	var got int
	ok, err := store.Get("k1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreKeysByPrefix(t *testing.T) {
	store, err := Open(t.TempDir(), "test")
	require.NoError(t, err)

	require.NoError(t, store.Put("lockout:a", 1))
	require.NoError(t, store.Put("lockout:b", 2))
	require.NoError(t, store.Put("ratelimit:a", 3))

	keys := store.Keys("lockout:")
	assert.ElementsMatch(t, []string{"lockout:a", "lockout:b"}, keys)
	assert.Len(t, store.Keys(""), 3)
}
