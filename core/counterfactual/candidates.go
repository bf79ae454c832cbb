package counterfactual

import "github.com/enerflow/gridbalance/core/model"

// DefaultCandidates builds the standard upgrade catalogue for a scenario:
// +50% battery energy per region (initial SoC rescaled to keep the same
// fraction), +50% battery power per region, and +50% and +100% capacity on
// each link. Regions follow ascending identifier order, links their input
// order, so the catalogue is deterministic.
func DefaultCandidates(sc model.Scenario) []model.Perturbation {
	var out []model.Perturbation
	for _, id := range sc.RegionIDs() {
		r, _ := sc.RegionByID(id)
		out = append(out, model.Perturbation{
			Kind:       model.PerturbBatteryCapacity,
			Region:     id,
			AddMWh:     r.Battery.CapacityMWh * 0.5,
			RescaleSoC: true,
		})
	}
	for _, id := range sc.RegionIDs() {
		r, _ := sc.RegionByID(id)
		out = append(out, model.Perturbation{
			Kind:   model.PerturbBatteryPower,
			Region: id,
			AddMW:  r.Battery.PowerMW * 0.5,
		})
	}
	for _, l := range sc.Links {
		out = append(out, model.Perturbation{
			Kind:  model.PerturbLinkCapacity,
			LinkA: l.A,
			LinkB: l.B,
			AddMW: l.CapacityMW * 0.5,
		})
	}
	for _, l := range sc.Links {
		out = append(out, model.Perturbation{
			Kind:  model.PerturbLinkCapacity,
			LinkA: l.A,
			LinkB: l.B,
			AddMW: l.CapacityMW,
		})
	}
	return out
}
