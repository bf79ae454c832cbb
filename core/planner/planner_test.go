package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enerflow/gridbalance/core/model"
)

func region(load, solar, fuel []float64, b model.BatterySpec) model.Region {
	wind := make([]float64, len(load))
	return model.Region{
		ID:             "R1",
		LoadMW:         load,
		SolarMW:        solar,
		WindMW:         wind,
		FuelCapacityMW: fuel,
		Battery:        b,
	}
}

func TestTargetsReserveFuelResidual(t *testing.T) {
	// Fuel covers 80 of the 100 MW deficit each hour; the curve rations the
	// battery so each hour may only spend its 20 MW residual.
	r := region(
		[]float64{100, 100},
		[]float64{0, 0},
		[]float64{80, 80},
		model.BatterySpec{CapacityMWh: 100, PowerMW: 50, InitialSoCMWh: 100},
	)
	got := Targets(r, 2)
	assert.Equal(t, []float64{80, 60}, got)
}

func TestTargetsRationWhenEnergyShort(t *testing.T) {
	// Residuals total 40 MWh against 20 MWh of stored energy: each hour's
	// allowance halves.
	r := region(
		[]float64{100, 100},
		[]float64{0, 0},
		[]float64{80, 80},
		model.BatterySpec{CapacityMWh: 100, PowerMW: 50, InitialSoCMWh: 20},
	)
	got := Targets(r, 2)
	assert.InDeltaSlice(t, []float64{10, 0}, got, 1e-9)
}

func TestTargetsZeroAfterLastDeficit(t *testing.T) {
	r := region(
		[]float64{100, 0},
		[]float64{0, 0},
		[]float64{80, 0},
		model.BatterySpec{CapacityMWh: 100, PowerMW: 50, InitialSoCMWh: 100},
	)
	got := Targets(r, 2)
	assert.Equal(t, 80.0, got[0])
	assert.Equal(t, 0.0, got[1], "no remaining deficit means no reservation")
}

func TestTargetsEveningFloor(t *testing.T) {
	load := make([]float64, 24)
	solar := make([]float64, 24)
	fuel := make([]float64, 24)
	r := region(load, solar, fuel, model.BatterySpec{
		CapacityMWh:   100,
		PowerMW:       50,
		InitialSoCMWh: 100,
		EveningStart:  17,
		EveningEnd:    21,
		EveningFloor:  0.4,
	})
	got := Targets(r, 24)
	for h := 0; h < 24; h++ {
		if h >= 17 && h < 21 {
			assert.Equal(t, 40.0, got[h], "hour %d inside evening window", h)
		} else {
			assert.Equal(t, 0.0, got[h], "hour %d outside evening window", h)
		}
	}
}

func TestTargetsZeroCapacity(t *testing.T) {
	r := region(
		[]float64{100, 100},
		[]float64{0, 0},
		[]float64{0, 0},
		model.BatterySpec{CapacityMWh: 0, PowerMW: 0, InitialSoCMWh: 0, EveningStart: 0, EveningEnd: 24, EveningFloor: 0.5},
	)
	got := Targets(r, 2)
	assert.Equal(t, []float64{0, 0}, got)
}

func TestTargetsCappedAtCapacity(t *testing.T) {
	// A full-capacity floor can never push the target above capacity.
	r := region(
		[]float64{100},
		[]float64{0},
		[]float64{0},
		model.BatterySpec{CapacityMWh: 50, PowerMW: 50, InitialSoCMWh: 50, EveningStart: 0, EveningEnd: 24, EveningFloor: 1},
	)
	got := Targets(r, 1)
	assert.Equal(t, []float64{50}, got)
}

func TestTargetsAllKeysEveryRegion(t *testing.T) {
	sc := model.Scenario{
		Horizon: 1,
		Regions: []model.Region{
			region([]float64{10}, []float64{0}, []float64{10}, model.BatterySpec{CapacityMWh: 10, PowerMW: 5, InitialSoCMWh: 5}),
		},
		Policy: model.DefaultPolicy(),
	}
	sc.Regions[0].ID = "A"
	curves := TargetsAll(sc)
	assert.Len(t, curves, 1)
	assert.Len(t, curves["A"], 1)
}
