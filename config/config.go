// Package config loads and validates the run configuration from YAML or
// JSON files, with optional environment overrides, and converts it into the
// engine's scenario model.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/infra/history"
	"github.com/enerflow/gridbalance/infra/metrics"
	"github.com/enerflow/gridbalance/infra/monitoring"
)

type Config struct {
	Horizon int            `json:"horizon"`
	Regions []RegionConfig `json:"regions"`
	Links   []LinkConfig   `json:"links"`
	Policy  PolicyConfig   `json:"policy"`
	Metrics MetricsConfig  `json:"metrics"`
	Output  OutputConfig   `json:"output"`

	// History persists run summaries; Sentry reports failures. Both are
	// disabled by their zero values.
	History history.Config    `json:"history"`
	Sentry  monitoring.Config `json:"sentry"`
}

type RegionConfig struct {
	ID      string    `json:"id"`
	LoadMW  []float64 `json:"load_mw"`
	SolarMW []float64 `json:"solar_mw"`
	WindMW  []float64 `json:"wind_mw"`

	// FuelCapacityMW sets a constant plant ceiling; FuelCapacitySeriesMW
	// overrides it with a per-hour series when present.
	FuelCapacityMW       float64   `json:"fuel_capacity_mw"`
	FuelCapacitySeriesMW []float64 `json:"fuel_capacity_series_mw"`

	Battery BatteryConfig `json:"battery"`
}

type BatteryConfig struct {
	CapacityMWh   float64 `json:"capacity_mwh"`
	PowerMW       float64 `json:"power_mw"`
	InitialSoCMWh float64 `json:"initial_soc_mwh"`
	Efficiency    float64 `json:"efficiency"`
	EveningStart  int     `json:"evening_start"`
	EveningEnd    int     `json:"evening_end"`
	EveningFloor  float64 `json:"evening_floor"`
}

type LinkConfig struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	CapacityMW float64 `json:"capacity_mw"`
}

type PolicyConfig struct {
	UnservedPenalty    float64 `json:"unserved_penalty"`
	FuelPenalty        float64 `json:"fuel_penalty"`
	CurtailmentPenalty float64 `json:"curtailment_penalty"`
	FuelWarningRatio   float64 `json:"fuel_warning_ratio"`
}

// SetDefaults applies the standard penalty weights where unset.
func (c *PolicyConfig) SetDefaults() {
	def := model.DefaultPolicy()
	if c.UnservedPenalty == 0 {
		c.UnservedPenalty = def.UnservedPenalty
	}
	if c.FuelPenalty == 0 {
		c.FuelPenalty = def.FuelPenalty
	}
	if c.CurtailmentPenalty == 0 {
		c.CurtailmentPenalty = def.CurtailmentPenalty
	}
	if c.FuelWarningRatio == 0 {
		c.FuelWarningRatio = def.FuelWarningRatio
	}
}

type MetricsConfig struct {
	PrometheusEnabled bool                 `json:"prometheus_enabled"`
	PrometheusPort    string               `json:"prometheus_port"`
	InfluxEnabled     bool                 `json:"influx_enabled"`
	Influx            metrics.InfluxConfig `json:"influx"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}

type OutputConfig struct {
	// Dir receives the run artifacts (ledger CSV, KPI and recommendation
	// JSON). Empty disables exports.
	Dir string `json:"dir"`
}

// Load reads the configuration file, applies GB_* environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Policy.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate builds the scenario once to surface configuration errors at load
// time rather than at run time.
func (c *Config) Validate() error {
	sc, err := c.Scenario()
	if err != nil {
		return err
	}
	return sc.Validate()
}

// Scenario converts the configuration into the engine's input bundle.
func (c *Config) Scenario() (model.Scenario, error) {
	sc := model.Scenario{
		Horizon: c.Horizon,
		Policy: model.Policy{
			UnservedPenalty:    c.Policy.UnservedPenalty,
			FuelPenalty:        c.Policy.FuelPenalty,
			CurtailmentPenalty: c.Policy.CurtailmentPenalty,
			FuelWarningRatio:   c.Policy.FuelWarningRatio,
		},
	}
	if c.Horizon <= 0 {
		return model.Scenario{}, &model.ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be positive, got %d", c.Horizon)}
	}
	for _, rc := range c.Regions {
		fuel := rc.FuelCapacitySeriesMW
		if fuel == nil {
			fuel = make([]float64, c.Horizon)
			for i := range fuel {
				fuel[i] = rc.FuelCapacityMW
			}
		}
		solar := rc.SolarMW
		if solar == nil {
			solar = make([]float64, c.Horizon)
		}
		wind := rc.WindMW
		if wind == nil {
			wind = make([]float64, c.Horizon)
		}
		eff := rc.Battery.Efficiency
		if eff == 0 {
			eff = 1
		}
		sc.Regions = append(sc.Regions, model.Region{
			ID:             rc.ID,
			LoadMW:         rc.LoadMW,
			SolarMW:        solar,
			WindMW:         wind,
			FuelCapacityMW: fuel,
			Battery: model.BatterySpec{
				CapacityMWh:   rc.Battery.CapacityMWh,
				PowerMW:       rc.Battery.PowerMW,
				InitialSoCMWh: rc.Battery.InitialSoCMWh,
				Efficiency:    eff,
				EveningStart:  rc.Battery.EveningStart,
				EveningEnd:    rc.Battery.EveningEnd,
				EveningFloor:  rc.Battery.EveningFloor,
			},
		})
	}
	for _, lc := range c.Links {
		sc.Links = append(sc.Links, model.TransferLink{A: lc.From, B: lc.To, CapacityMW: lc.CapacityMW})
	}
	return sc, nil
}
