package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/enerflow/gridbalance/core/metrics"
	"github.com/enerflow/gridbalance/core/model"
)

func sampleSummary() coremetrics.RunSummary {
	return coremetrics.RunSummary{
		RunID: "run-1",
		KPIs: model.KPIs{
			UnservedMWh:          20,
			FuelMWh:              60,
			CurtailmentMWh:       80,
			RenewableUtilization: 0.75,
			TransferUtilization:  1,
			BatteryCyclesProxy:   0.2,
		},
		Events: []model.StressEvent{
			{Region: "NM", Hour: 0, Severity: model.SeverityCritical, MagnitudeMW: 10},
			{Region: "NM", Hour: 1, Severity: model.SeverityCritical, MagnitudeMW: 10},
			{Region: "TX", Hour: 3, Severity: model.SeverityWarning, MagnitudeMW: 95},
		},
		Duration: 42 * time.Millisecond,
		Time:     time.Now(),
	}
}

func TestPromSinkRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(sampleSummary()))

	expected := `
# HELP grid_run_kpi KPI values of the most recent dispatch run
# TYPE grid_run_kpi gauge
grid_run_kpi{kpi="battery_cycles_proxy"} 0.2
grid_run_kpi{kpi="curtailment_mwh"} 80
grid_run_kpi{kpi="fuel_mwh"} 60
grid_run_kpi{kpi="renewable_utilization"} 0.75
grid_run_kpi{kpi="transfer_utilization"} 1
grid_run_kpi{kpi="unserved_mwh"} 20
# HELP grid_stress_events_total Total number of stress events observed across runs
# TYPE grid_stress_events_total counter
grid_stress_events_total{region="NM",severity="critical"} 2
grid_stress_events_total{region="TX",severity="warning"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"grid_run_kpi", "grid_stress_events_total"))
}

func TestPromSinkReregistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	require.NoError(t, err)
	second, err := NewPromSink(reg)
	require.NoError(t, err, "second construction reuses existing collectors")

	require.NoError(t, first.RecordRun(sampleSummary()))
	require.NoError(t, second.RecordRun(sampleSummary()))

	count := testutil.ToFloat64(second.stress.WithLabelValues("critical", "NM"))
	assert.Equal(t, 4.0, count, "both sinks feed the same counter")
	require.NoError(t, second.Close())
}

func TestMultiSinkFansOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSink(reg)
	require.NoError(t, err)

	multi := coremetrics.NewMultiSink(coremetrics.NopSink{}, prom)
	require.NoError(t, multi.RecordRun(sampleSummary()))
	require.NoError(t, multi.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.stress.WithLabelValues("warning", "TX")))
}
