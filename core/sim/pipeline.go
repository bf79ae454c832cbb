// Package sim composes the full evaluation pipeline: validation, SoC target
// planning, dispatch and analysis. One call is one deterministic run.
package sim

import (
	"github.com/google/uuid"

	"github.com/enerflow/gridbalance/core/analysis"
	"github.com/enerflow/gridbalance/core/dispatch"
	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/core/planner"
)

// Result bundles everything a single run produces. The RunID only tags
// exports and metrics; it never influences the allocation.
type Result struct {
	RunID   string
	Targets map[string][]float64
	Ledgers []model.HourlyLedger
	KPIs    model.KPIs
	Events  []model.StressEvent
}

// Run executes planner, engine and analyzer against the scenario. The
// scenario is read-only throughout; concurrent Run calls on the same value
// are safe.
func Run(sc model.Scenario) (*Result, error) {
	return RunWithEngine(sc, dispatch.Engine{})
}

// RunWithEngine is Run with a caller-supplied engine, used by tests to turn
// on strict invariant checking.
func RunWithEngine(sc model.Scenario, eng dispatch.Engine) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	targets := planner.TargetsAll(sc)
	ledgers, err := eng.Run(sc, targets)
	if err != nil {
		return nil, err
	}
	report := analysis.Analyze(sc, ledgers)
	return &Result{
		RunID:   uuid.NewString(),
		Targets: targets,
		Ledgers: ledgers,
		KPIs:    report.KPIs,
		Events:  report.Events,
	}, nil
}
