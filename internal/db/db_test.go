package db

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanview/internal/scan"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSequence() scan.Sequence {
	return scan.Sequence{
		{Angle: 0, Distance: 10, North: 5, Mode: "AUTO", Time: 100},
		{Angle: 90, Distance: 20, East: 3, Time: 101},
		{Angle: 180, Distance: 30, Down: -1.5, Mode: "LOITER", Time: 104},
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestMigrateDown(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'source'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n, "source column should be gone after rollback")
}

func TestOpenDB_NoSchema(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestCreateRun_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	db.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

	run, err := db.CreateRun("flight-1", "logs/flight-1.txt", testSequence())
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, 3, run.SampleCount)

	got, err := db.Run(run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("Run mismatch (-want +got):\n%s", diff)
	}

	seq, err := db.RunSamples(run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(testSequence(), seq); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateRun_Empty(t *testing.T) {
	db := setupTestDB(t)
	run, err := db.CreateRun("empty", "", nil)
	require.NoError(t, err)

	seq, err := db.RunSamples(run.ID)
	require.NoError(t, err)
	assert.NotNil(t, seq)
	assert.Empty(t, seq)
}

func TestRuns_NewestFirst(t *testing.T) {
	db := setupTestDB(t)

	runs, err := db.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = db.LatestRun()
	assert.ErrorIs(t, err, ErrRunNotFound)

	clock := time.Unix(1000, 0)
	db.now = func() time.Time { return clock }
	first, err := db.CreateRun("a", "", testSequence())
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	second, err := db.CreateRun("b", "", testSequence()[:1])
	require.NoError(t, err)

	runs, err = db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	latest, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "b", latest.Name)
}

func TestRun_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Run("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = db.RunSamples("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = db.RunStats("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, db.DeleteRun("missing"), ErrRunNotFound)
}

func TestDeleteRun_CascadesSamples(t *testing.T) {
	db := setupTestDB(t)
	run, err := db.CreateRun("gone", "", testSequence())
	require.NoError(t, err)

	require.NoError(t, db.DeleteRun(run.ID))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, run.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestRunStats(t *testing.T) {
	db := setupTestDB(t)
	run, err := db.CreateRun("stats", "", testSequence())
	require.NoError(t, err)

	st, err := db.RunStats(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, st.RunID)
	assert.Equal(t, 3, st.Samples)
	assert.InDelta(t, 20.0, st.MeanDistance, 1e-9)
	assert.Equal(t, 30.0, st.MaxDistance)
	assert.InDelta(t, 10.0, st.StdDistance, 1e-9)
	assert.Equal(t, 4.0, st.TimeSpan)
}

func TestComputeStats_Degenerate(t *testing.T) {
	assert.Equal(t, &RunStats{RunID: "x"}, ComputeStats("x", nil))

	one := ComputeStats("y", scan.Sequence{{Distance: 7}})
	assert.Equal(t, 7.0, one.MeanDistance)
	assert.Zero(t, one.StdDistance)
	assert.Zero(t, one.TimeSpan, "sentinel times are ignored")
}

func TestAttachAdminRoutes(t *testing.T) {
	db := setupTestDB(t)
	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	for _, endpoint := range []string{"/debug/backup", "/debug/tailsql/"} {
		t.Run(endpoint, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, endpoint, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			// may be 403 from the debug access check, but must be registered
			if w.Code == http.StatusNotFound {
				t.Errorf("Endpoint %s should be registered, got 404", endpoint)
			}
		})
	}
}

func TestServeBackup(t *testing.T) {
	db := setupTestDB(t)
	db.now = func() time.Time { return time.Unix(1234, 0) }
	_, err := db.CreateRun("backed-up", "", testSequence())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	db.serveBackup(w, httptest.NewRequest(http.MethodGet, "/debug/backup", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=backup-1234.db.gz", w.Header().Get("Content-Disposition"))

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "SQLite format 3"))
}
