package playback

import (
	"sync"
	"time"

	"github.com/banshee-data/scanview/internal/scan"
)

// SampleStore holds the most recently fetched sequence. It is replaced
// wholesale on every successful fetch and left untouched on failure.
type SampleStore struct {
	mu        sync.RWMutex
	seq       scan.Sequence
	err       error
	lastFetch time.Time
}

// NewSampleStore returns an empty store.
func NewSampleStore() *SampleStore {
	return &SampleStore{}
}

// Replace installs seq and clears any recorded fetch error.
func (s *SampleStore) Replace(seq scan.Sequence, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = seq
	s.err = nil
	s.lastFetch = at
}

// Fail records a fetch error. The previous sequence is kept.
func (s *SampleStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Snapshot returns the current sequence and error together. The returned
// sequence must not be modified.
func (s *SampleStore) Snapshot() (scan.Sequence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq, s.err
}

// Sequence returns the current sequence.
func (s *SampleStore) Sequence() scan.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Len returns the number of samples held.
func (s *SampleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seq)
}

// Err returns the error from the most recent fetch, nil after a success.
func (s *SampleStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LastFetch returns the time of the last successful fetch.
func (s *SampleStore) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}
