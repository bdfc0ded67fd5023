package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/sqldesk/internal/testutil"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_CreateAndClose(t *testing.T) {
	dataDir := testutil.TempDir(t)
	store, err := Open(dataDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.NoError(t, store.Close())

	_, err = os.Stat(filepath.Join(dataDir, "history.db"))
	assert.NoError(t, err)
}

func TestStore_AddAndRecent(t *testing.T) {
	s := openMemory(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	execTime := 0.25

	first, err := s.Add(Entry{
		Section:       "ask",
		Input:         "list users",
		SQLQuery:      "SELECT * FROM users",
		Success:       true,
		ExecutionTime: &execTime,
		ResultKind:    "text",
		CreatedAt:     base,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	_, err = s.Add(Entry{
		Section:   "sql",
		Input:     "SELECT x",
		Error:     "Invalid column name 'x'",
		CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	got, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "sql", got[0].Section)
	assert.False(t, got[0].Success)
	assert.Equal(t, "Invalid column name 'x'", got[0].Error)
	assert.Nil(t, got[0].ExecutionTime)

	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, got[1].Success)
	assert.Equal(t, "SELECT * FROM users", got[1].SQLQuery)
	require.NotNil(t, got[1].ExecutionTime)
	assert.InDelta(t, 0.25, *got[1].ExecutionTime, 1e-9)
	assert.Equal(t, base, got[1].CreatedAt)
}

func TestStore_RecentLimit(t *testing.T) {
	s := openMemory(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Add(Entry{Section: "ask", Input: "q", CreatedAt: base.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	got, err := s.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, base.Add(4*time.Second), got[0].CreatedAt)

	none, err := s.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Clear(t *testing.T) {
	s := openMemory(t)
	_, err := s.Add(Entry{Section: "ask", Input: "a"})
	require.NoError(t, err)
	_, err = s.Add(Entry{Section: "sql", Input: "b"})
	require.NoError(t, err)

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Validation(t *testing.T) {
	s := openMemory(t)
	_, err := s.Add(Entry{Input: "no section"})
	assert.Error(t, err)

	var nilStore *Store
	_, err = nilStore.Recent(1)
	assert.Error(t, err)
	assert.NoError(t, nilStore.Close())
}
