package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerflow/gridbalance/core/dispatch"
	"github.com/enerflow/gridbalance/core/model"
)

func pipelineScenario() model.Scenario {
	return model.Scenario{
		Horizon: 3,
		Regions: []model.Region{
			{
				ID:             "AA",
				LoadMW:         []float64{100, 80, 120},
				SolarMW:        []float64{30, 90, 0},
				WindMW:         []float64{10, 10, 10},
				FuelCapacityMW: []float64{50, 50, 50},
				Battery:        model.BatterySpec{CapacityMWh: 60, PowerMW: 25, InitialSoCMWh: 30, Efficiency: 0.9},
			},
			{
				ID:             "BB",
				LoadMW:         []float64{50, 50, 50},
				SolarMW:        []float64{100, 0, 40},
				WindMW:         []float64{0, 0, 0},
				FuelCapacityMW: []float64{20, 20, 20},
			},
		},
		Links:  []model.TransferLink{{A: "AA", B: "BB", CapacityMW: 30}},
		Policy: model.DefaultPolicy(),
	}
}

func TestRunProducesCompleteResult(t *testing.T) {
	sc := pipelineScenario()
	res, err := RunWithEngine(sc, dispatch.Engine{StrictChecks: true})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Ledgers, sc.Horizon*len(sc.Regions))
	require.Len(t, res.Targets, 2)
	assert.Len(t, res.Targets["AA"], sc.Horizon)
	assert.Len(t, res.Targets["BB"], sc.Horizon)
	assert.Equal(t, 450.0, res.KPIs.TotalLoadMWh)
}

func TestRunIsDeterministicApartFromRunID(t *testing.T) {
	sc := pipelineScenario()
	first, err := Run(sc)
	require.NoError(t, err)
	second, err := Run(sc)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Targets, second.Targets)
	assert.Equal(t, first.Ledgers, second.Ledgers)
	assert.Equal(t, first.KPIs, second.KPIs)
	assert.Equal(t, first.Events, second.Events)
}

func TestRunRejectsInvalidScenario(t *testing.T) {
	sc := pipelineScenario()
	sc.Horizon = 0
	res, err := Run(sc)
	assert.Nil(t, res)
	assert.True(t, model.IsConfigError(err))
}
