package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/scanview/internal/scan"
)

// Run is one stored capture.
type Run struct {
	ID          string    `json:"run_id"`
	Name        string    `json:"name"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	SampleCount int       `json:"sample_count"`
}

// CreateRun stores seq as a new run. source records where the samples came
// from (a log file or URL) and may be empty.
func (db *DB) CreateRun(name, source string, seq scan.Sequence) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Name:        name,
		Source:      source,
		CreatedAt:   db.now().UTC().Truncate(time.Second),
		SampleCount: len(seq),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, name, source, created_unix, sample_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Source, run.CreatedAt.Unix(), run.SampleCount,
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (
			run_id, seq, angle, distance, north, east, down, mode, time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i, s := range seq {
		if _, err := stmt.Exec(run.ID, i, s.Angle, s.Distance, s.North, s.East, s.Down, s.Mode, s.Time); err != nil {
			return nil, fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

const runColumns = `run_id, name, source, created_unix, sample_count`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var (
		r       Run
		created int64
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Source, &created, &r.SampleCount); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	return &r, nil
}

// Runs lists stored runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_unix DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Run returns the run with the given id or ErrRunNotFound.
func (db *DB) Run(id string) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// LatestRun returns the most recently created run or ErrRunNotFound when the
// database is empty.
func (db *DB) LatestRun() (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT ` + runColumns + ` FROM runs ORDER BY created_unix DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return r, err
}

// RunSamples returns a run's samples in their stored order.
func (db *DB) RunSamples(id string) (scan.Sequence, error) {
	if _, err := db.Run(id); err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT angle, distance, north, east, down, mode, time
		FROM samples WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seq := scan.Sequence{}
	for rows.Next() {
		var s scan.Sample
		if err := rows.Scan(&s.Angle, &s.Distance, &s.North, &s.East, &s.Down, &s.Mode, &s.Time); err != nil {
			return nil, err
		}
		seq = append(seq, s)
	}
	return seq, rows.Err()
}

// DeleteRun removes a run and its samples.
func (db *DB) DeleteRun(id string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RunStats summarises the distances in a run.
type RunStats struct {
	RunID        string  `json:"run_id"`
	Samples      int     `json:"samples"`
	MeanDistance float64 `json:"mean_distance"`
	MaxDistance  float64 `json:"max_distance"`
	StdDistance  float64 `json:"std_distance"`
	// TimeSpan is the spread of the non-zero sample times, in seconds.
	TimeSpan float64 `json:"time_span"`
}

// RunStats computes RunStats for a stored run.
func (db *DB) RunStats(id string) (*RunStats, error) {
	seq, err := db.RunSamples(id)
	if err != nil {
		return nil, err
	}
	return ComputeStats(id, seq), nil
}

// ComputeStats summarises seq. The standard deviation is 0 for fewer than
// two samples.
func ComputeStats(id string, seq scan.Sequence) *RunStats {
	st := &RunStats{RunID: id, Samples: len(seq)}
	if len(seq) == 0 {
		return st
	}

	dist := make([]float64, len(seq))
	var times []float64
	for i, s := range seq {
		dist[i] = s.Distance
		if s.Time != 0 {
			times = append(times, s.Time)
		}
	}

	st.MeanDistance = stat.Mean(dist, nil)
	st.MaxDistance = floats.Max(dist)
	if len(dist) > 1 {
		st.StdDistance = stat.StdDev(dist, nil)
	}
	if len(times) > 0 {
		st.TimeSpan = floats.Max(times) - floats.Min(times)
	}
	return st
}
