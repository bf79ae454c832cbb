// Package planner derives per-region minimum state-of-charge reservation
// curves from remaining-horizon scarcity and the evening reserve floor. The
// curve is advisory: it caps the dispatch engine's discharge but moves no
// energy itself.
package planner

import (
	"gonum.org/v1/gonum/floats"

	"github.com/enerflow/gridbalance/core/model"
)

// Targets builds the minimum-SoC curve for one region over the horizon.
//
// The scarcity component rations the battery's available energy across the
// hours whose deficit exceeds what the fuel plant can cover on its own: each
// such hour receives its residual deficit as a discharge allowance, scaled
// down proportionally when the battery cannot cover them all. Hours with no
// remaining gross deficit ahead of them carry no scarcity reservation.
// Inside the evening window the curve is floored at the configured fraction
// of capacity.
func Targets(r model.Region, horizon int) []float64 {
	b := r.Battery
	targets := make([]float64, horizon)
	if b.CapacityMWh <= 0 {
		return targets
	}

	gross := make([]float64, horizon)
	residual := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		deficit := r.LoadMW[h] - r.RenewableMW(h)
		if deficit > 0 {
			gross[h] = deficit
		}
		if rem := deficit - r.FuelCapacityMW[h]; rem > 0 {
			residual[h] = rem
		}
	}

	energy := b.InitialSoCMWh
	totalResidual := floats.Sum(residual)
	ration := 1.0
	if totalResidual > energy && totalResidual > 0 {
		ration = energy / totalResidual
	}

	remainingGross := floats.Sum(gross)
	spent := 0.0
	floor := b.EveningFloor * b.CapacityMWh
	for h := 0; h < horizon; h++ {
		spent += residual[h] * ration

		target := 0.0
		if remainingGross > 0 {
			target = clamp(energy-spent, 0, b.CapacityMWh)
		}
		if b.InEveningWindow(h) && floor > target {
			target = floor
		}
		targets[h] = clamp(target, 0, b.CapacityMWh)

		remainingGross -= gross[h]
	}
	return targets
}

// TargetsAll computes the curve for every region in the scenario, keyed by
// region identifier.
func TargetsAll(sc model.Scenario) map[string][]float64 {
	out := make(map[string][]float64, len(sc.Regions))
	for _, r := range sc.Regions {
		out[r.ID] = Targets(r, sc.Horizon)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
