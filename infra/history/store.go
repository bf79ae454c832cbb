// Package history persists completed run summaries so past dispatch outcomes
// can be queried after the process exits. Stores hold results only; replaying
// a record never feeds back into the engine.
package history

import (
	"context"
	"time"

	"github.com/enerflow/gridbalance/core/model"
)

// RunRecord is the persisted form of one completed run.
type RunRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	RunID     string              `json:"run_id"`
	KPIs      model.KPIs          `json:"kpis"`
	Events    []model.StressEvent `json:"stress_events"`
}

// RunQuery filters stored records. Zero-valued fields match everything.
type RunQuery struct {
	Start time.Time
	End   time.Time
	RunID string
}

func (q RunQuery) matches(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	return true
}

// Store persists run records and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error { return nil }
func (NopStore) Query(context.Context, RunQuery) ([]RunRecord, error) {
	return nil, nil
}
func (NopStore) Close() error { return nil }

// Config selects and parameterises the history backend. An empty backend
// disables persistence.
type Config struct {
	// Backend is "jsonl", "sqlite" or empty.
	Backend string `json:"backend"`
	Path    string `json:"path"`

	// Rotation settings, jsonl backend only.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// New builds the store described by cfg.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "":
		return NopStore{}, nil
	case "jsonl":
		if cfg.MaxSizeMB > 0 || cfg.MaxBackups > 0 || cfg.MaxAgeDays > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, &model.ConfigError{Field: "history.backend", Reason: "must be jsonl, sqlite or empty"}
	}
}
