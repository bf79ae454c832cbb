// Package monitoring defines the error-reporting boundary. The engine never
// imports a vendor SDK directly; it reports through the Monitor interface and
// runs against NopMonitor unless an implementation is installed.
package monitoring

import "time"

// Monitor receives failures that should reach an external error tracker.
// Tags typically carry run_id and the pipeline stage that failed.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs the process-wide monitor.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// CaptureRunFailure reports a failed pipeline run.
func CaptureRunFailure(runID, stage string, err error) {
	CaptureException(err, map[string]string{"run_id": runID, "stage": stage})
}

// Recover captures panics in worker goroutines.
func Recover() {
	current.Recover()
}

// Flush blocks until buffered reports are delivered or the timeout expires.
func Flush(timeout time.Duration) {
	current.Flush(timeout)
}
