// Package api serves the data origin (the scan_data endpoint and stored
// runs) and the viewer's control and chart endpoints.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/scanview/internal/monitoring"
)

// ANSI escape codes for the request log.
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// statusRecorder captures the status and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += n
	return n, err
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

func statusCodeColor(code int) string {
	color := ""
	switch {
	case code >= 400:
		color = colorBoldRed
	case code >= 300:
		color = colorYellow
	case code >= 200:
		color = colorBoldGreen
	}
	if color == "" {
		return strconv.Itoa(code)
	}
	return color + strconv.Itoa(code) + colorReset
}

// LoggingMiddleware returns middleware that logs each request as
// "[component] status method path size duration" through monitoring.Logf.
func LoggingMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			monitoring.Logf("[%s] %s %s %s%s%s %dB %.2fms",
				component, statusCodeColor(rec.status), r.Method,
				colorCyan, r.RequestURI, colorReset,
				rec.bytes, float64(time.Since(start).Microseconds())/1e3,
			)
		})
	}
}
