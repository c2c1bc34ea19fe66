package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/scanview/internal/db"
	"github.com/banshee-data/scanview/internal/scan"
)

// RunStore is the part of *db.DB that RunSource reads.
type RunStore interface {
	LatestRun() (*db.Run, error)
	RunSamples(id string) (scan.Sequence, error)
}

// RunSource serves the samples of a stored run. With an empty RunID it
// follows the newest run, so a fresh import replaces what is played.
type RunSource struct {
	Store RunStore
	RunID string
}

// Fetch loads the run's samples.
func (s *RunSource) Fetch(ctx context.Context) (scan.Sequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := s.RunID
	if id == "" {
		run, err := s.Store.LatestRun()
		if errors.Is(err, db.ErrRunNotFound) {
			return nil, ErrNoRun
		}
		if err != nil {
			return nil, fmt.Errorf("latest run: %w", err)
		}
		id = run.ID
	}

	seq, err := s.Store.RunSamples(id)
	if errors.Is(err, db.ErrRunNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoRun, id)
	}
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return seq, nil
}
