package model

// KPIs aggregates a completed run into summary metrics. All energy totals
// are MWh over the full horizon.
type KPIs struct {
	TotalLoadMWh          float64            `json:"total_load_mwh"`
	RenewableGeneratedMWh float64            `json:"renewable_generated_mwh"`
	RenewableUsedMWh      float64            `json:"renewable_used_mwh"`
	RenewableUtilization  float64            `json:"renewable_utilization"`
	CurtailmentMWh        float64            `json:"curtailment_mwh"`
	FuelMWh               float64            `json:"fuel_mwh"`
	UnservedMWh           float64            `json:"unserved_mwh"`
	UnservedByRegionMWh   map[string]float64 `json:"unserved_by_region_mwh"`
	TransferredMWh        float64            `json:"transferred_mwh"`
	TransferUtilization   float64            `json:"transfer_utilization"`
	BatteryDischargedMWh  float64            `json:"battery_discharged_mwh"`
	BatteryCyclesProxy    float64            `json:"battery_cycles_proxy"`
	PeakLoadMW            float64            `json:"peak_load_mw"`
}

// PenaltyScore collapses the KPIs into a single weighted scalar, lower is
// better. It is the comparison basis for counterfactual ranking.
func (k KPIs) PenaltyScore(p Policy) float64 {
	return k.UnservedMWh*p.UnservedPenalty +
		k.FuelMWh*p.FuelPenalty +
		k.CurtailmentMWh*p.CurtailmentPenalty
}

// Severity classifies a stress event.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// StressEvent flags a region-hour under stress. Critical means unserved
// energy occurred; warning means the fuel plant ran at or above the policy
// warning ratio without unserved energy.
type StressEvent struct {
	Region      string   `json:"region"`
	Hour        int      `json:"hour"`
	Severity    Severity `json:"severity"`
	MagnitudeMW float64  `json:"magnitude_mw"`
}
