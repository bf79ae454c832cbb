// Package analysis aggregates a completed dispatch run into KPIs and scans
// the ledger sequence for stressed region-hours.
package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/enerflow/gridbalance/core/model"
)

// Report is the analyzer's output for one run.
type Report struct {
	KPIs   model.KPIs
	Events []model.StressEvent
}

// Analyze walks the ledger sequence once and produces the KPI vector and
// stress events. Events come out ordered by hour, then region identifier,
// matching the ledger order the engine emits.
func Analyze(sc model.Scenario, ledgers []model.HourlyLedger) Report {
	k := model.KPIs{UnservedByRegionMWh: make(map[string]float64, len(sc.Regions))}
	var events []model.StressEvent

	fuelCaps := make(map[string][]float64, len(sc.Regions))
	for _, r := range sc.Regions {
		fuelCaps[r.ID] = r.FuelCapacityMW
		k.UnservedByRegionMWh[r.ID] = 0
		if len(r.LoadMW) > 0 {
			if peak := floats.Max(r.LoadMW); peak > k.PeakLoadMW {
				k.PeakLoadMW = peak
			}
		}
	}

	for _, l := range ledgers {
		k.TotalLoadMWh += l.LoadMW
		k.RenewableGeneratedMWh += l.RenewableGeneratedMW
		k.RenewableUsedMWh += l.RenewableUsedMW
		k.CurtailmentMWh += l.CurtailmentMW
		k.FuelMWh += l.FuelMW
		k.UnservedMWh += l.UnservedMW
		k.UnservedByRegionMWh[l.Region] += l.UnservedMW
		k.TransferredMWh += l.TransferInMW + l.FuelBackedTransferInMW
		k.BatteryDischargedMWh += l.BatteryDischargeMW

		if ev, ok := stressFor(sc.Policy, fuelCaps, l); ok {
			events = append(events, ev)
		}
	}

	// Ratios are defined as 0 whenever their denominator vanishes, never
	// propagated as errors.
	if k.RenewableGeneratedMWh > 0 {
		k.RenewableUtilization = k.RenewableUsedMWh / k.RenewableGeneratedMWh
	}
	if cap := transferCapacityMWh(sc); cap > 0 {
		k.TransferUtilization = k.TransferredMWh / cap
	}
	if total := totalBatteryCapacity(sc); total > 0 {
		k.BatteryCyclesProxy = k.BatteryDischargedMWh / (2 * total)
	}
	return Report{KPIs: k, Events: events}
}

// stressFor classifies one region-hour. Critical means unserved energy;
// warning means fuel output at or above the policy ratio of plant capacity
// without a critical condition in the same hour.
func stressFor(p model.Policy, fuelCaps map[string][]float64, l model.HourlyLedger) (model.StressEvent, bool) {
	if l.UnservedMW > 0 {
		return model.StressEvent{
			Region:      l.Region,
			Hour:        l.Hour,
			Severity:    model.SeverityCritical,
			MagnitudeMW: l.UnservedMW,
		}, true
	}
	caps := fuelCaps[l.Region]
	if l.Hour >= len(caps) {
		return model.StressEvent{}, false
	}
	cap := caps[l.Hour]
	if cap > 0 && l.FuelMW >= p.FuelWarningRatio*cap {
		return model.StressEvent{
			Region:      l.Region,
			Hour:        l.Hour,
			Severity:    model.SeverityWarning,
			MagnitudeMW: l.FuelMW,
		}, true
	}
	return model.StressEvent{}, false
}

// transferCapacityMWh is the utilization denominator: every link's capacity
// counted for every hour of the horizon, whether or not the link carried
// flow. A never-used link therefore drags utilization down instead of being
// excluded.
func transferCapacityMWh(sc model.Scenario) float64 {
	total := 0.0
	for _, l := range sc.Links {
		total += l.CapacityMW * float64(sc.Horizon)
	}
	return total
}

func totalBatteryCapacity(sc model.Scenario) float64 {
	total := 0.0
	for _, r := range sc.Regions {
		total += r.Battery.CapacityMWh
	}
	return total
}
