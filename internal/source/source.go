// Package source implements the data-origin collaborators the engine polls:
// the HTTP scan_data endpoint, a JSON file on disk and a stored run.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/scanview/internal/httputil"
	"github.com/banshee-data/scanview/internal/scan"
)

// ErrNoRun is returned by RunSource when there is no run to serve.
var ErrNoRun = errors.New("no stored run")

// Source returns the full current sequence on every call.
type Source interface {
	Fetch(ctx context.Context) (scan.Sequence, error)
}

// DefaultRequestTimeout bounds one HTTP fetch.
const DefaultRequestTimeout = 4 * time.Second

// HTTPSource fetches the sequence from a data-origin URL such as
// http://localhost:3001/api/scan_data.
type HTTPSource struct {
	URL     string
	Client  httputil.HTTPClient
	Timeout time.Duration
}

// NewHTTPSource returns an HTTPSource using the standard client.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:     url,
		Client:  httputil.NewStandardClient(&http.Client{}),
		Timeout: timeout,
	}
}

// Fetch performs one GET. A transport failure, a non-2xx status
// (*httputil.StatusError) and an unparsable body (scan.ErrMalformed) are
// returned as distinct wrapped errors.
func (s *HTTPSource) Fetch(ctx context.Context) (scan.Sequence, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, err
	}

	seq, err := scan.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	return seq, nil
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (scan.Sequence, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) (scan.Sequence, error) { return f(ctx) }
