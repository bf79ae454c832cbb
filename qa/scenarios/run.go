package scenarios

import (
	"fmt"
	"math"

	"github.com/enerflow/gridbalance/core/dispatch"
	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/core/sim"
)

// Run executes the scenario with strict invariant checking and verifies the
// expected KPI bounds. It returns the result for further inspection.
func Run(s *Scenario) (*sim.Result, error) {
	res, err := sim.RunWithEngine(s.ToModel(), dispatch.Engine{StrictChecks: true})
	if err != nil {
		return nil, err
	}
	if err := s.check(res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Scenario) check(res *sim.Result) error {
	tol := s.Expected.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	if v := s.Expected.UnservedMWh; v != nil && math.Abs(res.KPIs.UnservedMWh-*v) > tol {
		return fmt.Errorf("%s: unserved %.4f, expected %.4f", s.Name, res.KPIs.UnservedMWh, *v)
	}
	if v := s.Expected.FuelMWh; v != nil && math.Abs(res.KPIs.FuelMWh-*v) > tol {
		return fmt.Errorf("%s: fuel %.4f, expected %.4f", s.Name, res.KPIs.FuelMWh, *v)
	}
	if v := s.Expected.CurtailmentMWh; v != nil && math.Abs(res.KPIs.CurtailmentMWh-*v) > tol {
		return fmt.Errorf("%s: curtailment %.4f, expected %.4f", s.Name, res.KPIs.CurtailmentMWh, *v)
	}
	if v := s.Expected.MaxUnservedMWh; v != nil && res.KPIs.UnservedMWh > *v+tol {
		return fmt.Errorf("%s: unserved %.4f exceeds bound %.4f", s.Name, res.KPIs.UnservedMWh, *v)
	}
	if v := s.Expected.CriticalEvents; v != nil {
		got := 0
		for _, ev := range res.Events {
			if ev.Severity == model.SeverityCritical {
				got++
			}
		}
		if got != *v {
			return fmt.Errorf("%s: %d critical events, expected %d", s.Name, got, *v)
		}
	}
	return nil
}
