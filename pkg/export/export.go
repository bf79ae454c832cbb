// Package export renders run results into machine-readable artifacts. It is
// the engine-side half of reporting: downstream renderers consume these
// files, the engine never formats prose.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/core/sim"
)

// WriteLedgersCSV writes the hourly ledger sequence to w.
func WriteLedgersCSV(w io.Writer, ledgers []model.HourlyLedger) error {
	cw := csv.NewWriter(w)
	header := []string{
		"region", "hour", "load_mw", "renewable_generated_mw", "renewable_used_mw",
		"battery_charge_mw", "battery_discharge_mw", "soc_after_mwh",
		"transfer_in_mw", "transfer_out_mw", "fuel_backed_in_mw", "fuel_backed_out_mw",
		"fuel_mw", "curtailment_mw", "unserved_mw",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, l := range ledgers {
		rec := []string{
			l.Region,
			strconv.Itoa(l.Hour),
			ftoa(l.LoadMW),
			ftoa(l.RenewableGeneratedMW),
			ftoa(l.RenewableUsedMW),
			ftoa(l.BatteryChargeMW),
			ftoa(l.BatteryDischargeMW),
			ftoa(l.SoCAfterMWh),
			ftoa(l.TransferInMW),
			ftoa(l.TransferOutMW),
			ftoa(l.FuelBackedTransferInMW),
			ftoa(l.FuelBackedTransferOutMW),
			ftoa(l.FuelMW),
			ftoa(l.CurtailmentMW),
			ftoa(l.UnservedMW),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteKPIsJSON writes the KPI vector and stress events to w.
func WriteKPIsJSON(w io.Writer, res *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		RunID  string              `json:"run_id"`
		KPIs   model.KPIs          `json:"kpis"`
		Events []model.StressEvent `json:"stress_events"`
	}{RunID: res.RunID, KPIs: res.KPIs, Events: res.Events})
}

// WriteRecommendationsJSON writes the ranked recommendation list to w.
func WriteRecommendationsJSON(w io.Writer, recs []model.Recommendation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteRunArtifacts writes ledgers.csv and kpis.json into dir, creating it
// when needed.
func WriteRunArtifacts(dir string, res *sim.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "ledgers.csv"), func(w io.Writer) error {
		return WriteLedgersCSV(w, res.Ledgers)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "kpis.json"), func(w io.Writer) error {
		return WriteKPIsJSON(w, res)
	})
}

// WriteRecommendations writes recommendations.json into dir.
func WriteRecommendations(dir string, recs []model.Recommendation) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "recommendations.json"), func(w io.Writer) error {
		return WriteRecommendationsJSON(w, recs)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
