package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	scannedAt := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	runID, err := db.RecordRun(&ScanRun{
		ScannedAt:     scannedAt,
		RootDir:       "/code",
		TotalProjects: 2,
		AverageHealth: 75,
		Command:       "track",
		Version:       "test",
	}, []ProjectSnapshot{
		{Name: "api", Path: "/code/api", Type: "flask_app", Stack: []string{"python", "flask"}, Size: 10, HasGit: true, HealthScore: 80, Version: "1.0.0"},
		{Name: "notes", Path: "/code/notes", Type: "project", HealthScore: 70},
	})
	require.NoError(t, err)
	assert.Positive(t, runID)

	run, err := db.GetRun(runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.True(t, run.ScannedAt.Equal(scannedAt))
	assert.Equal(t, "/code", run.RootDir)
	assert.Equal(t, 2, run.TotalProjects)
	assert.InDelta(t, 75.0, run.AverageHealth, 0.001)

	snaps, err := db.GetProjectSnapshots(runID)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "api", snaps[0].Name)
	assert.Equal(t, []string{"python", "flask"}, snaps[0].Stack)
	assert.Equal(t, "1.0.0", snaps[0].Version)
	assert.Equal(t, "", snaps[0].PackageName)
	assert.Equal(t, []string{}, snaps[1].Stack)
}

func TestGetRunN(t *testing.T) {
	db := openTestDB(t)

	for i := 1; i <= 3; i++ {
		_, err := db.RecordRun(&ScanRun{ScannedAt: time.Now(), RootDir: "/r", TotalProjects: i, Command: "track", Version: "v"}, nil)
		require.NoError(t, err)
	}

	latest, err := db.GetRunN(1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.TotalProjects)

	previous, err := db.GetRunN(2)
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, 2, previous.TotalProjects)

	missing, err := db.GetRunN(10)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	for i := 0; i < 4; i++ {
		_, err := db.RecordRun(&ScanRun{ScannedAt: time.Now(), RootDir: "/r", TotalProjects: i, Command: "scan", Version: "v"}, nil)
		require.NoError(t, err)
	}

	runs, err = db.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 3, runs[0].TotalProjects, "newest first")
}

func TestOpen_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devdash.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.RecordRun(&ScanRun{ScannedAt: time.Now(), RootDir: "/r", Command: "scan", Version: "v"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening runs Migrate again without clobbering data.
	db, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
