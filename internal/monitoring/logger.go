// Package monitoring holds the diagnostic logger hook and the Prometheus
// metrics shared by the poller, the playback engine and the HTTP surfaces.
package monitoring

import "log"

// Logf receives the engine's diagnostic messages, which carry a bracketed
// component prefix such as "[poll]". It writes through the standard logger
// unless replaced with SetLogger.
var Logf func(format string, v ...any) = log.Printf

// SetLogger redirects Logf. nil silences it, which the terminal UI relies on
// so log lines do not land on the drawn screen.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		f = func(string, ...any) {}
	}
	Logf = f
}
