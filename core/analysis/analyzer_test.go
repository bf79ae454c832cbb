package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enerflow/gridbalance/core/model"
)

func twoRegionScenario() model.Scenario {
	return model.Scenario{
		Horizon: 2,
		Regions: []model.Region{
			{
				ID:             "AZ",
				LoadMW:         []float64{50, 50},
				SolarMW:        []float64{150, 150},
				WindMW:         []float64{0, 0},
				FuelCapacityMW: []float64{0, 0},
			},
			{
				ID:             "NM",
				LoadMW:         []float64{100, 100},
				SolarMW:        []float64{0, 0},
				WindMW:         []float64{0, 0},
				FuelCapacityMW: []float64{30, 30},
			},
		},
		Links:  []model.TransferLink{{A: "AZ", B: "NM", CapacityMW: 60}},
		Policy: model.DefaultPolicy(),
	}
}

// twoRegionLedgers mirrors what the engine emits for twoRegionScenario: AZ
// exports 60 MW over the link each hour and curtails the rest, NM burns its
// full plant and still falls 10 MW short.
func twoRegionLedgers() []model.HourlyLedger {
	var ledgers []model.HourlyLedger
	for h := 0; h < 2; h++ {
		ledgers = append(ledgers,
			model.HourlyLedger{
				Region: "AZ", Hour: h,
				LoadMW:               50,
				RenewableGeneratedMW: 150,
				RenewableUsedMW:      110,
				TransferOutMW:        60,
				CurtailmentMW:        40,
			},
			model.HourlyLedger{
				Region: "NM", Hour: h,
				LoadMW:       100,
				TransferInMW: 60,
				FuelMW:       30,
				UnservedMW:   10,
			},
		)
	}
	return ledgers
}

func TestAnalyzeTotalsAndRatios(t *testing.T) {
	rep := Analyze(twoRegionScenario(), twoRegionLedgers())
	k := rep.KPIs

	assert.Equal(t, 300.0, k.TotalLoadMWh)
	assert.Equal(t, 300.0, k.RenewableGeneratedMWh)
	assert.Equal(t, 220.0, k.RenewableUsedMWh)
	assert.InDelta(t, 220.0/300.0, k.RenewableUtilization, 1e-9)
	assert.Equal(t, 80.0, k.CurtailmentMWh)
	assert.Equal(t, 60.0, k.FuelMWh)
	assert.Equal(t, 20.0, k.UnservedMWh)
	assert.Equal(t, 120.0, k.TransferredMWh)
	assert.Equal(t, 1.0, k.TransferUtilization, "60 MW link saturated both hours")
	assert.Equal(t, 100.0, k.PeakLoadMW)
	assert.Equal(t, map[string]float64{"AZ": 0, "NM": 20}, k.UnservedByRegionMWh)
}

func TestCriticalSuppressesWarningSameHour(t *testing.T) {
	rep := Analyze(twoRegionScenario(), twoRegionLedgers())

	// NM runs its plant at 100% of capacity while unserved: only the
	// critical event is reported for each hour.
	assert.Len(t, rep.Events, 2)
	for i, ev := range rep.Events {
		assert.Equal(t, "NM", ev.Region)
		assert.Equal(t, i, ev.Hour)
		assert.Equal(t, model.SeverityCritical, ev.Severity)
		assert.Equal(t, 10.0, ev.MagnitudeMW)
	}
}

func TestWarningAtFuelRatio(t *testing.T) {
	sc := model.Scenario{
		Horizon: 1,
		Regions: []model.Region{{
			ID:             "TX",
			LoadMW:         []float64{95},
			SolarMW:        []float64{0},
			WindMW:         []float64{0},
			FuelCapacityMW: []float64{100},
		}},
		Policy: model.DefaultPolicy(),
	}

	rep := Analyze(sc, []model.HourlyLedger{{
		Region: "TX", LoadMW: 95, RenewableUsedMW: 0, FuelMW: 95,
	}})
	assert.Len(t, rep.Events, 1)
	assert.Equal(t, model.SeverityWarning, rep.Events[0].Severity)
	assert.Equal(t, 95.0, rep.Events[0].MagnitudeMW)

	rep = Analyze(sc, []model.HourlyLedger{{
		Region: "TX", LoadMW: 89, FuelMW: 89,
	}})
	assert.Empty(t, rep.Events, "below the warning ratio")
}

func TestNoWarningWithZeroCapacityPlant(t *testing.T) {
	sc := model.Scenario{
		Horizon: 1,
		Regions: []model.Region{{
			ID:             "HY",
			LoadMW:         []float64{10},
			SolarMW:        []float64{10},
			WindMW:         []float64{0},
			FuelCapacityMW: []float64{0},
		}},
		Policy: model.DefaultPolicy(),
	}
	rep := Analyze(sc, []model.HourlyLedger{{
		Region: "HY", LoadMW: 10, RenewableGeneratedMW: 10, RenewableUsedMW: 10,
	}})
	assert.Empty(t, rep.Events)
}

func TestRenewableUtilizationZeroWithoutGeneration(t *testing.T) {
	sc := model.Scenario{
		Horizon: 1,
		Regions: []model.Region{{
			ID:             "TX",
			LoadMW:         []float64{50},
			SolarMW:        []float64{0},
			WindMW:         []float64{0},
			FuelCapacityMW: []float64{50},
		}},
		Policy: model.DefaultPolicy(),
	}
	rep := Analyze(sc, []model.HourlyLedger{{
		Region: "TX", LoadMW: 50, FuelMW: 50,
	}})
	assert.Equal(t, 0.0, rep.KPIs.RenewableUtilization)
	assert.Equal(t, 0.0, rep.KPIs.TransferUtilization, "no links defined")
	assert.Equal(t, 0.0, rep.KPIs.BatteryCyclesProxy, "no battery capacity")
}

func TestBatteryCyclesProxy(t *testing.T) {
	sc := model.Scenario{
		Horizon: 2,
		Regions: []model.Region{{
			ID:             "TX",
			LoadMW:         []float64{100, 100},
			SolarMW:        []float64{0, 0},
			WindMW:         []float64{0, 0},
			FuelCapacityMW: []float64{80, 80},
			Battery:        model.BatterySpec{CapacityMWh: 100, PowerMW: 50, InitialSoCMWh: 100},
		}},
		Policy: model.DefaultPolicy(),
	}
	ledgers := []model.HourlyLedger{
		{Region: "TX", Hour: 0, LoadMW: 100, BatteryDischargeMW: 20, FuelMW: 80, SoCAfterMWh: 80},
		{Region: "TX", Hour: 1, LoadMW: 100, BatteryDischargeMW: 20, FuelMW: 80, SoCAfterMWh: 60},
	}
	rep := Analyze(sc, ledgers)
	assert.Equal(t, 40.0, rep.KPIs.BatteryDischargedMWh)
	assert.InDelta(t, 0.2, rep.KPIs.BatteryCyclesProxy, 1e-9, "40 MWh through a 100 MWh pack")
}

func TestPenaltyScoreWeights(t *testing.T) {
	k := model.KPIs{UnservedMWh: 2, FuelMWh: 3, CurtailmentMWh: 5}
	assert.Equal(t, 2*1000.0+3*10.0+5*1.0, k.PenaltyScore(model.DefaultPolicy()))
}
