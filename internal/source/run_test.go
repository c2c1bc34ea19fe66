package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanview/internal/db"
	"github.com/banshee-data/scanview/internal/scan"
)

func TestRunSource(t *testing.T) {
	store, err := db.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	src := &RunSource{Store: store}
	_, err = src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoRun)

	seq := scan.Sequence{{Angle: 10, Distance: 1, Mode: "AUTO", Time: 5}, {Angle: 20, Distance: 2}}
	run, err := store.CreateRun("r1", "", seq)
	require.NoError(t, err)

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seq, got)

	pinned := &RunSource{Store: store, RunID: run.ID}
	got, err = pinned.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	missing := &RunSource{Store: store, RunID: "nope"}
	_, err = missing.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoRun)
}
