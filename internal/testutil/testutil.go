// Package testutil holds scan fixtures and HTTP helpers shared by package
// tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/banshee-data/scanview/internal/scan"
)

// Samples returns n returns spaced 360/n degrees apart at distances
// 1..n metres, with a pose that moves one metre north per sample.
func Samples(n int) scan.Sequence {
	seq := make(scan.Sequence, n)
	for i := range seq {
		seq[i] = scan.Sample{
			Angle:    float64(i) * 360 / math.Max(float64(n), 1),
			Distance: float64(i + 1),
			North:    float64(i),
			East:     -float64(i),
			Down:     -0.5,
			Mode:     "AUTO",
			Time:     1.7e9 + float64(i),
		}
	}
	return seq
}

// Source is a mutable in-memory data origin. It is safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	seq   scan.Sequence
	err   error
	calls int
}

// NewSource returns a Source serving seq.
func NewSource(seq scan.Sequence) *Source {
	return &Source{seq: seq}
}

// Fetch returns a copy of the current sequence or the configured error.
func (s *Source) Fetch(ctx context.Context) (scan.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.seq.Clone(), nil
}

// Set replaces the served sequence and error.
func (s *Source) Set(seq scan.Sequence, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq, s.err = seq, err
}

// Calls reports how many fetches were made.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewJSONRequest builds a request whose body is body marshalled as JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
