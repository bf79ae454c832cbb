// Package scenarios runs YAML-defined dispatch scenarios end to end and
// checks the resulting KPIs, as a regression harness over the full pipeline.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/enerflow/gridbalance/core/model"
)

type BatteryDef struct {
	CapacityMWh   float64 `yaml:"capacity_mwh"`
	PowerMW       float64 `yaml:"power_mw"`
	InitialSoCMWh float64 `yaml:"initial_soc_mwh"`
	Efficiency    float64 `yaml:"efficiency,omitempty"`
	EveningStart  int     `yaml:"evening_start,omitempty"`
	EveningEnd    int     `yaml:"evening_end,omitempty"`
	EveningFloor  float64 `yaml:"evening_floor,omitempty"`
}

type RegionDef struct {
	ID           string     `yaml:"id"`
	Load         []float64  `yaml:"load"`
	Solar        []float64  `yaml:"solar"`
	Wind         []float64  `yaml:"wind"`
	FuelCapacity []float64  `yaml:"fuel_capacity"`
	Battery      BatteryDef `yaml:"battery"`
}

type LinkDef struct {
	From       string  `yaml:"from"`
	To         string  `yaml:"to"`
	CapacityMW float64 `yaml:"capacity_mw"`
}

// Expected bounds checked against the run's KPIs. Tolerance applies to the
// exact-value fields.
type Expected struct {
	UnservedMWh    *float64 `yaml:"unserved_mwh,omitempty"`
	FuelMWh        *float64 `yaml:"fuel_mwh,omitempty"`
	CurtailmentMWh *float64 `yaml:"curtailment_mwh,omitempty"`
	MaxUnservedMWh *float64 `yaml:"max_unserved_mwh,omitempty"`
	CriticalEvents *int     `yaml:"critical_events,omitempty"`
	Tolerance      float64  `yaml:"tolerance,omitempty"`
}

type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Horizon     int         `yaml:"horizon"`
	Regions     []RegionDef `yaml:"regions"`
	Links       []LinkDef   `yaml:"links,omitempty"`
	Expected    Expected    `yaml:"expected"`
}

// ToModel converts the YAML definition into the engine scenario.
func (s Scenario) ToModel() model.Scenario {
	sc := model.Scenario{Horizon: s.Horizon, Policy: model.DefaultPolicy()}
	for _, rd := range s.Regions {
		eff := rd.Battery.Efficiency
		if eff == 0 {
			eff = 1
		}
		sc.Regions = append(sc.Regions, model.Region{
			ID:             rd.ID,
			LoadMW:         rd.Load,
			SolarMW:        rd.Solar,
			WindMW:         rd.Wind,
			FuelCapacityMW: rd.FuelCapacity,
			Battery: model.BatterySpec{
				CapacityMWh:   rd.Battery.CapacityMWh,
				PowerMW:       rd.Battery.PowerMW,
				InitialSoCMWh: rd.Battery.InitialSoCMWh,
				Efficiency:    eff,
				EveningStart:  rd.Battery.EveningStart,
				EveningEnd:    rd.Battery.EveningEnd,
				EveningFloor:  rd.Battery.EveningFloor,
			},
		})
	}
	for _, ld := range s.Links {
		sc.Links = append(sc.Links, model.TransferLink{A: ld.From, B: ld.To, CapacityMW: ld.CapacityMW})
	}
	return sc
}

// Load reads one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
