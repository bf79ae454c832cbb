package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/core/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		RunID: "test-run",
		Ledgers: []model.HourlyLedger{
			{
				Region: "AZ", Hour: 0,
				LoadMW:               50,
				RenewableGeneratedMW: 150,
				RenewableUsedMW:      110,
				TransferOutMW:        60,
				CurtailmentMW:        40,
			},
			{
				Region: "NM", Hour: 0,
				LoadMW:       100,
				TransferInMW: 60,
				FuelMW:       30,
				UnservedMW:   10,
			},
		},
		KPIs: model.KPIs{
			TotalLoadMWh:        150,
			UnservedMWh:         10,
			UnservedByRegionMWh: map[string]float64{"AZ": 0, "NM": 10},
		},
		Events: []model.StressEvent{
			{Region: "NM", Hour: 0, Severity: model.SeverityCritical, MagnitudeMW: 10},
		},
	}
}

func TestWriteLedgersCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLedgersCSV(&buf, sampleResult().Ledgers))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "region", rows[0][0])
	assert.Len(t, rows[0], 15)

	assert.Equal(t, []string{
		"AZ", "0", "50", "150", "110", "0", "0", "0",
		"0", "60", "0", "0", "0", "40", "0",
	}, rows[1])
	assert.Equal(t, "10", rows[2][14], "NM unserved column")
}

func TestWriteKPIsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteKPIsJSON(&buf, sampleResult()))

	var out struct {
		RunID  string              `json:"run_id"`
		KPIs   model.KPIs          `json:"kpis"`
		Events []model.StressEvent `json:"stress_events"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "test-run", out.RunID)
	assert.Equal(t, 10.0, out.KPIs.UnservedMWh)
	require.Len(t, out.Events, 1)
	assert.Equal(t, model.SeverityCritical, out.Events[0].Severity)
}

func TestWriteRecommendationsJSON(t *testing.T) {
	recs := []model.Recommendation{
		{Rank: 1, Description: "Add 30 MW transfer capacity on AZ-NM", ScoreDelta: -12000},
		{Rank: 2, Description: "Add 20 MWh battery storage to NM", ScoreDelta: -500, Err: ""},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsJSON(&buf, recs))

	var out []model.Recommendation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, -12000.0, out[0].ScoreDelta)
	assert.False(t, out[1].Failed())
}

func TestWriteRunArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteRunArtifacts(dir, sampleResult()))

	for _, name := range []string{"ledgers.csv", "kpis.json"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestWriteRecommendationsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteRecommendations(dir, []model.Recommendation{{Rank: 1, Description: "noop"}}))
	data, err := os.ReadFile(filepath.Join(dir, "recommendations.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"description": "noop"`)
}
