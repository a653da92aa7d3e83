package scanstore

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

func newSQLiteStore(t *testing.T) contract.ScanStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essa-store.db")
	store, err := NewScanStore("scan_results_test", schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestSQLiteRoundTrip tests set, get and overwrite against a SQLite file.
func TestSQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	now := time.Now().Unix()

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k1", []byte(`{"title":"1abc"}`), 1, now))
	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"title":"1abc"}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, now, ts)

	// Same key replaces the previous entry.
	require.NoError(t, store.Set("k1", []byte(`{"title":"2xyz"}`), 2, now+10))
	value, version, ts, err = store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"title":"2xyz"}`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, now+10, ts)
}

// TestSQLiteAll tests listing every stored scan, newest first.
func TestSQLiteAll(t *testing.T) {
	store := newSQLiteStore(t)
	base := time.Now().Unix()

	require.NoError(t, store.Set("old", []byte("a"), 1, base-100))
	require.NoError(t, store.Set("new", []byte("b"), 1, base))
	require.NoError(t, store.Set("mid", []byte("c"), 1, base-50))

	scans, err := store.All()
	require.NoError(t, err)
	require.Len(t, scans, 3)
	assert.Equal(t, "new", scans[0].Key)
	assert.Equal(t, "mid", scans[1].Key)
	assert.Equal(t, "old", scans[2].Key)
	assert.Equal(t, []byte("b"), scans[0].Payload)
}

// TestSQLiteClear tests removing every entry.
func TestSQLiteClear(t *testing.T) {
	store := newSQLiteStore(t)
	require.NoError(t, store.Set("k", []byte("v"), 1, time.Now().Unix()))

	require.NoError(t, store.Clear())
	scans, err := store.All()
	require.NoError(t, err)
	assert.Empty(t, scans)
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// TestSQLiteStatus tests the status report over an evolving store.
func TestSQLiteStatus(t *testing.T) {
	store := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.NotEmpty(t, status.Location)
	assert.Equal(t, int64(0), status.EntryCount)

	base := time.Now().Unix()
	require.NoError(t, store.Set("a", []byte("x"), 1, base-10))
	require.NoError(t, store.Set("b", []byte("y"), 1, base))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.EntryCount)
	assert.Equal(t, base-10, status.OldestUnix)
	assert.Equal(t, base, status.NewestUnix)
}

// TestNoneBackend tests the no-op behavior of the disabled store.
func TestNoneBackend(t *testing.T) {
	store, err := NewScanStore("scan_results_test", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("any")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("any", []byte("v"), 1, 0))
	scans, err := store.All()
	require.NoError(t, err)
	assert.Empty(t, scans)
	assert.NoError(t, store.Clear())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

// TestNewScanStoreValidation tests table name and backend validation.
func TestNewScanStoreValidation(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		backend   schema.DatabaseBackend
	}{
		{name: "injection in table name", tableName: "scans; DROP TABLE x", backend: schema.SQLiteBackend},
		{name: "empty table name", tableName: "", backend: schema.SQLiteBackend},
		{name: "leading digit", tableName: "1scans", backend: schema.SQLiteBackend},
		{name: "unknown backend", tableName: "scans", backend: "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanStore(tt.tableName, tt.backend, "")
			assert.Error(t, err)
		})
	}
}

// TestSQLitePersistence tests that a second store over the same file sees
// the first store's entries.
func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essa-store.db")

	first, err := NewScanStore("scan_results_test", schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", []byte("v"), 1, time.Now().Unix()))
	require.NoError(t, first.Close())

	second, err := NewScanStore("scan_results_test", schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	value, _, _, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}

// TestClearStoreSQLite tests that clearing the SQLite backend removes the
// database file, and tolerates a missing one.
func TestClearStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essa-store.db")
	require.NoError(t, os.WriteFile(path, []byte("db"), 0o644))

	require.NoError(t, ClearStore(schema.SQLiteBackend, path, ""))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// A second clear on the already-removed file is fine.
	assert.NoError(t, ClearStore(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearStore(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	assert.Error(t, ClearStore("redis", "", ""))
}
