// Package metrics defines the observability boundary for completed runs.
// Sinks receive summaries only; they can never influence the allocation.
package metrics

import (
	"time"

	"github.com/enerflow/gridbalance/core/model"
)

// RunSummary is the per-run record handed to sinks.
type RunSummary struct {
	RunID    string
	KPIs     model.KPIs
	Events   []model.StressEvent
	Duration time.Duration
	Time     time.Time
}

// Sink records run summaries for observability purposes.
type Sink interface {
	RecordRun(summary RunSummary) error
	Close() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordRun(RunSummary) error { return nil }
func (NopSink) Close() error               { return nil }

// MultiSink fans a summary out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRun(s RunSummary) error {
	for _, sink := range m.sinks {
		if err := sink.RecordRun(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var first error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
