package model

import "fmt"

// PerturbationKind identifies which infrastructure scalar a perturbation
// modifies.
type PerturbationKind string

const (
	PerturbBatteryCapacity PerturbationKind = "battery_capacity"
	PerturbBatteryPower    PerturbationKind = "battery_power"
	PerturbLinkCapacity    PerturbationKind = "link_capacity"
)

// Perturbation describes a single-scalar infrastructure change to evaluate
// counterfactually. Region is used for battery kinds, LinkA/LinkB for link
// capacity.
type Perturbation struct {
	Kind   PerturbationKind
	Region string
	LinkA  string
	LinkB  string

	// AddMWh / AddMW is the additive change applied to the target scalar.
	// Negative values model downgrades and may fail validation.
	AddMWh float64
	AddMW  float64

	// RescaleSoC keeps the initial SoC fraction constant when the battery
	// capacity changes.
	RescaleSoC bool
}

// Describe renders the perturbation for operators.
func (p Perturbation) Describe() string {
	switch p.Kind {
	case PerturbBatteryCapacity:
		return fmt.Sprintf("Add %.0f MWh battery storage to %s", p.AddMWh, p.Region)
	case PerturbBatteryPower:
		return fmt.Sprintf("Add %.0f MW battery power to %s", p.AddMW, p.Region)
	case PerturbLinkCapacity:
		return fmt.Sprintf("Add %.0f MW transfer capacity on %s-%s", p.AddMW, p.LinkA, p.LinkB)
	default:
		return fmt.Sprintf("unknown perturbation %q", p.Kind)
	}
}

// KPIDeltas holds perturbed-minus-baseline differences for the scored KPIs.
type KPIDeltas struct {
	UnservedMWh    float64 `json:"unserved_mwh_delta"`
	FuelMWh        float64 `json:"fuel_mwh_delta"`
	CurtailmentMWh float64 `json:"curtailment_mwh_delta"`
	RenewableUtil  float64 `json:"renewable_util_delta"`
	TransferredMWh float64 `json:"transferred_mwh_delta"`
}

// Recommendation is the scored outcome of one counterfactual run. It is
// immutable once computed. Recommendations sort ascending by ScoreDelta,
// most negative first; failed entries sort last.
type Recommendation struct {
	Rank         int          `json:"rank"`
	Perturbation Perturbation `json:"-"`
	Description  string       `json:"description"`
	Deltas       KPIDeltas    `json:"kpi_deltas"`
	ScoreDelta   float64      `json:"score_delta"`

	// Err is set when the perturbed configuration failed validation. A
	// failed entry never aborts sibling runs.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the counterfactual run could not be evaluated.
func (r Recommendation) Failed() bool { return r.Err != "" }
