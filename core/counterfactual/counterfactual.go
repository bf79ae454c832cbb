// Package counterfactual re-runs the full pipeline under perturbed
// infrastructure parameters and ranks the candidate upgrades by their
// penalty-score improvement against the baseline run.
package counterfactual

import (
	"fmt"
	"sort"
	"sync"

	"github.com/enerflow/gridbalance/core/logger"
	"github.com/enerflow/gridbalance/core/model"
	"github.com/enerflow/gridbalance/core/sim"
)

// Engine evaluates perturbation candidates. Each candidate run is a pure
// function of (baseline scenario, one perturbation): the baseline is deep
// copied per candidate and nothing is shared between workers.
type Engine struct {
	// Workers bounds the number of concurrent candidate runs. Values below 1
	// fall back to serial evaluation.
	Workers int

	Log logger.Logger
}

// Ranking is the ordered outcome of a counterfactual batch.
type Ranking struct {
	Baseline        model.KPIs
	BaselineScore   float64
	Recommendations []model.Recommendation
}

// Rank runs the baseline, evaluates every candidate and returns the
// recommendations sorted ascending by score delta (most negative first),
// ties broken by candidate input order. Candidates whose perturbed
// configuration fails validation become failed entries at the tail of the
// list; they never abort the batch.
func (e Engine) Rank(sc model.Scenario, candidates []model.Perturbation) (*Ranking, error) {
	baseline, err := sim.Run(sc)
	if err != nil {
		return nil, fmt.Errorf("baseline run: %w", err)
	}
	baseScore := baseline.KPIs.PenaltyScore(sc.Policy)

	recs := make([]model.Recommendation, len(candidates))
	order := make([]int, len(candidates))

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				recs[i] = e.evaluate(sc, candidates[i], baseline.KPIs, baseScore)
			}
		}()
	}
	for i := range candidates {
		order[i] = i
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := recs[order[a]], recs[order[b]]
		if ra.Failed() != rb.Failed() {
			return !ra.Failed()
		}
		if ra.Failed() {
			return order[a] < order[b]
		}
		if ra.ScoreDelta != rb.ScoreDelta {
			return ra.ScoreDelta < rb.ScoreDelta
		}
		return order[a] < order[b]
	})

	ranked := make([]model.Recommendation, len(order))
	for rank, idx := range order {
		rec := recs[idx]
		rec.Rank = rank + 1
		ranked[rank] = rec
	}
	return &Ranking{
		Baseline:        baseline.KPIs,
		BaselineScore:   baseScore,
		Recommendations: ranked,
	}, nil
}

func (e Engine) evaluate(sc model.Scenario, p model.Perturbation, baseline model.KPIs, baseScore float64) model.Recommendation {
	rec := model.Recommendation{Perturbation: p, Description: p.Describe()}

	perturbed, err := Apply(sc, p)
	if err == nil {
		var res *sim.Result
		res, err = sim.Run(perturbed)
		if err == nil {
			rec.Deltas = model.KPIDeltas{
				UnservedMWh:    res.KPIs.UnservedMWh - baseline.UnservedMWh,
				FuelMWh:        res.KPIs.FuelMWh - baseline.FuelMWh,
				CurtailmentMWh: res.KPIs.CurtailmentMWh - baseline.CurtailmentMWh,
				RenewableUtil:  res.KPIs.RenewableUtilization - baseline.RenewableUtilization,
				TransferredMWh: res.KPIs.TransferredMWh - baseline.TransferredMWh,
			}
			rec.ScoreDelta = res.KPIs.PenaltyScore(sc.Policy) - baseScore
			return rec
		}
	}
	rec.Err = err.Error()
	if e.Log != nil {
		e.Log.Warnf("counterfactual %q failed: %v", rec.Description, err)
	}
	return rec
}

// Apply clones the scenario and applies the single-scalar change. The clone
// is validated so that, for example, a downgrade driving a capacity negative
// surfaces as a configuration error on this candidate only.
func Apply(sc model.Scenario, p model.Perturbation) (model.Scenario, error) {
	out := sc.Clone()
	switch p.Kind {
	case model.PerturbBatteryCapacity, model.PerturbBatteryPower:
		idx := -1
		for i, r := range out.Regions {
			if r.ID == p.Region {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.Scenario{}, &model.ConfigError{Field: "perturbation", Reason: fmt.Sprintf("unknown region %q", p.Region)}
		}
		b := &out.Regions[idx].Battery
		if p.Kind == model.PerturbBatteryCapacity {
			fraction := 0.0
			if b.CapacityMWh > 0 {
				fraction = b.InitialSoCMWh / b.CapacityMWh
			}
			b.CapacityMWh += p.AddMWh
			if p.RescaleSoC {
				b.InitialSoCMWh = b.CapacityMWh * fraction
			}
		} else {
			b.PowerMW += p.AddMW
		}
	case model.PerturbLinkCapacity:
		idx := -1
		for i, l := range out.Links {
			if l.Connects(p.LinkA, p.LinkB) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.Scenario{}, &model.ConfigError{Field: "perturbation", Reason: fmt.Sprintf("no link between %q and %q", p.LinkA, p.LinkB)}
		}
		out.Links[idx].CapacityMW += p.AddMW
	default:
		return model.Scenario{}, &model.ConfigError{Field: "perturbation", Reason: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	if err := out.Validate(); err != nil {
		return model.Scenario{}, err
	}
	return out, nil
}
