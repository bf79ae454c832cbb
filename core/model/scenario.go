package model

import (
	"fmt"
	"math"
	"sort"
)

// Region bundles one balancing area: its hourly demand and renewable series,
// its fuel plant capacity and its battery. All series share the scenario
// horizon length.
type Region struct {
	ID string

	LoadMW  []float64
	SolarMW []float64
	WindMW  []float64

	// FuelCapacityMW is the per-hour ceiling of the region's fuel plant.
	// Fuel is a pure rate-limited source: there is no stored inventory.
	FuelCapacityMW []float64

	Battery BatterySpec
}

// RenewableMW returns the total renewable generation for hour h.
func (r Region) RenewableMW(h int) float64 {
	return r.SolarMW[h] + r.WindMW[h]
}

// BatterySpec is the static description of a region's battery. A zero
// capacity or zero power limit describes a region without usable storage.
type BatterySpec struct {
	CapacityMWh   float64
	PowerMW       float64
	InitialSoCMWh float64

	// Efficiency is the round-trip efficiency in (0,1]. The square root is
	// applied once on charge and once on discharge. Zero means "unset" and
	// is normalised to 1 during validation.
	Efficiency float64

	// EveningStart/EveningEnd delimit the evening reserve window as a
	// half-open [start,end) hour-of-day range. EveningFloor is the fraction
	// of capacity held back during that window.
	EveningStart int
	EveningEnd   int
	EveningFloor float64
}

// InEveningWindow reports whether hour h (absolute, horizon-indexed) falls
// inside the evening reserve window.
func (b BatterySpec) InEveningWindow(h int) bool {
	hod := h % 24
	return hod >= b.EveningStart && hod < b.EveningEnd
}

// OneWayEfficiency returns the square root of the round-trip efficiency,
// applied once per direction. An unset efficiency counts as lossless.
func (b BatterySpec) OneWayEfficiency() float64 {
	if b.Efficiency == 0 {
		return 1
	}
	return math.Sqrt(b.Efficiency)
}

// TransferLink is an unordered pair of regions with a bidirectional
// capacity. Flow on a link within one hour is a single signed value.
type TransferLink struct {
	A          string
	B          string
	CapacityMW float64
}

// Connects reports whether the link joins regions from and to, in either
// direction.
func (l TransferLink) Connects(from, to string) bool {
	return (l.A == from && l.B == to) || (l.A == to && l.B == from)
}

// Policy carries the penalty weights and stress thresholds applied to a run.
type Policy struct {
	UnservedPenalty    float64
	FuelPenalty        float64
	CurtailmentPenalty float64

	// FuelWarningRatio is the fuel-plant utilisation above which an hour is
	// flagged as a warning.
	FuelWarningRatio float64
}

// DefaultPolicy returns the standard penalty weights.
func DefaultPolicy() Policy {
	return Policy{
		UnservedPenalty:    1000,
		FuelPenalty:        10,
		CurtailmentPenalty: 1,
		FuelWarningRatio:   0.9,
	}
}

// Scenario is the full input bundle for one dispatch run: horizon, regions,
// transfer topology and policy. A Scenario is treated as immutable by the
// engine; counterfactual runs operate on deep copies.
type Scenario struct {
	Horizon int
	Regions []Region
	Links   []TransferLink
	Policy  Policy
}

// RegionIDs returns all region identifiers in ascending order. This order is
// the documented tie-break for transfers and fuel-backed exports.
func (s Scenario) RegionIDs() []string {
	ids := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		ids[i] = r.ID
	}
	sort.Strings(ids)
	return ids
}

// RegionByID returns the region with the given identifier.
func (s Scenario) RegionByID(id string) (Region, bool) {
	for _, r := range s.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// Clone returns a deep copy of the scenario. Counterfactual perturbations
// are applied to clones so sibling runs never share mutable state.
func (s Scenario) Clone() Scenario {
	out := Scenario{Horizon: s.Horizon, Policy: s.Policy}
	out.Regions = make([]Region, len(s.Regions))
	for i, r := range s.Regions {
		cp := r
		cp.LoadMW = append([]float64(nil), r.LoadMW...)
		cp.SolarMW = append([]float64(nil), r.SolarMW...)
		cp.WindMW = append([]float64(nil), r.WindMW...)
		cp.FuelCapacityMW = append([]float64(nil), r.FuelCapacityMW...)
		out.Regions[i] = cp
	}
	out.Links = append([]TransferLink(nil), s.Links...)
	return out
}

// Validate checks the scenario against the configuration-error taxonomy.
// It must pass before any hour is processed: a failing scenario produces no
// partial ledger.
func (s Scenario) Validate() error {
	if s.Horizon <= 0 {
		return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be positive, got %d", s.Horizon)}
	}
	if len(s.Regions) == 0 {
		return &ConfigError{Field: "regions", Reason: "at least one region is required"}
	}
	seen := make(map[string]bool, len(s.Regions))
	for _, r := range s.Regions {
		if r.ID == "" {
			return &ConfigError{Field: "regions", Reason: "region with empty identifier"}
		}
		if seen[r.ID] {
			return &ConfigError{Field: "regions", Reason: fmt.Sprintf("duplicate region %q", r.ID)}
		}
		seen[r.ID] = true
		if err := r.validate(s.Horizon); err != nil {
			return err
		}
	}
	for i, l := range s.Links {
		field := fmt.Sprintf("links[%d]", i)
		if !seen[l.A] || !seen[l.B] {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("link %s-%s references an unknown region", l.A, l.B)}
		}
		if l.A == l.B {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("link joins region %q to itself", l.A)}
		}
		if l.CapacityMW <= 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("capacity must be positive, got %g", l.CapacityMW)}
		}
	}
	return nil
}

func (r Region) validate(horizon int) error {
	series := []struct {
		name string
		v    []float64
	}{
		{"load", r.LoadMW},
		{"solar", r.SolarMW},
		{"wind", r.WindMW},
		{"fuel_capacity", r.FuelCapacityMW},
	}
	for _, ts := range series {
		field := fmt.Sprintf("regions[%s].%s", r.ID, ts.name)
		if len(ts.v) != horizon {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("series length %d does not match horizon %d", len(ts.v), horizon)}
		}
		for h, v := range ts.v {
			if v < 0 {
				return &ConfigError{Field: field, Reason: fmt.Sprintf("negative value %g at hour %d", v, h)}
			}
		}
	}
	return r.Battery.validate(r.ID)
}

func (b BatterySpec) validate(region string) error {
	field := fmt.Sprintf("regions[%s].battery", region)
	if b.CapacityMWh < 0 {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("capacity must not be negative, got %g", b.CapacityMWh)}
	}
	if b.PowerMW < 0 {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("power must not be negative, got %g", b.PowerMW)}
	}
	if b.InitialSoCMWh < 0 || b.InitialSoCMWh > b.CapacityMWh {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("initial SoC %g outside [0, %g]", b.InitialSoCMWh, b.CapacityMWh)}
	}
	if b.Efficiency < 0 || b.Efficiency > 1 {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("efficiency %g outside (0, 1]", b.Efficiency)}
	}
	if b.EveningStart < 0 || b.EveningStart > 23 || b.EveningEnd < 0 || b.EveningEnd > 24 {
		return &ConfigError{Field: field, Reason: "evening window hours must lie within a day"}
	}
	if b.EveningFloor < 0 || b.EveningFloor > 1 {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("evening floor %g outside [0, 1]", b.EveningFloor)}
	}
	return nil
}
