// Package dispatch implements the hour-by-hour greedy allocation of supply
// to demand across regions. Hours are processed in strict increasing order:
// hour h sees only the battery state left by hour h-1 plus whatever the
// planner encoded into the SoC target curve.
package dispatch

import (
	"fmt"

	"github.com/enerflow/gridbalance/core/logger"
	"github.com/enerflow/gridbalance/core/model"
)

// eps absorbs floating-point noise when deciding whether a residual deficit
// or surplus is real.
const eps = 1e-9

// InvariantError reports an internal defect: a ledger that fails energy
// balance or a battery leaving its bounds. A conforming engine never
// produces one; the check exists to fail loudly under StrictChecks rather
// than clamp silently.
type InvariantError struct {
	Region string
	Hour   int
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: region %s hour %d: %s", e.Region, e.Hour, e.Detail)
}

// Engine produces one HourlyLedger per region per hour under the fixed
// resource-priority policy: renewables, battery, direct transfers, own fuel,
// fuel-backed transfers, unserved.
type Engine struct {
	// StrictChecks verifies SoC bounds and ledger balance after every hour.
	// Enabled in tests; allocation logic never relies on it.
	StrictChecks bool

	Log logger.Logger
}

// regionState carries the mutable per-region view while one hour is being
// resolved.
type regionState struct {
	region  model.Region
	targets []float64
	soc     float64

	// Working values for the hour in flight.
	deficit  float64
	surplus  float64
	fuelUsed float64
	ledger   model.HourlyLedger
}

// Run executes the full horizon and returns the ordered ledger sequence:
// all regions (ascending identifier) for hour 0, then hour 1, and so on.
// Targets must cover every region with a curve of horizon length.
func (e Engine) Run(sc model.Scenario, targets map[string][]float64) ([]model.HourlyLedger, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	ids := sc.RegionIDs()
	states := make([]*regionState, len(ids))
	for i, id := range ids {
		r, _ := sc.RegionByID(id)
		curve, ok := targets[id]
		if !ok || len(curve) != sc.Horizon {
			return nil, &model.ConfigError{Field: "targets", Reason: fmt.Sprintf("missing or mis-sized target curve for region %q", id)}
		}
		states[i] = &regionState{region: r, targets: curve, soc: r.Battery.InitialSoCMWh}
	}

	ledgers := make([]model.HourlyLedger, 0, len(ids)*sc.Horizon)
	for h := 0; h < sc.Horizon; h++ {
		e.runHour(sc, states, h)
		for _, st := range states {
			if e.StrictChecks {
				if err := checkInvariants(st, h); err != nil {
					return nil, err
				}
			}
			ledgers = append(ledgers, st.ledger)
		}
	}
	if e.Log != nil {
		e.Log.Debugf("dispatch complete: %d regions over %d hours", len(ids), sc.Horizon)
	}
	return ledgers, nil
}

func (e Engine) runHour(sc model.Scenario, states []*regionState, h int) {
	// Steps 1-2: renewables and battery, independently per region.
	for _, st := range states {
		st.beginHour(h)
		st.applyRenewable()
		st.applyBattery(h)
	}

	linkUsed := make([]float64, len(sc.Links))

	// Step 3: direct transfers from surplus regions to deficit regions,
	// both sides walked in ascending region-identifier order.
	for _, dst := range states {
		if dst.deficit <= eps {
			continue
		}
		for _, src := range states {
			if src == dst || src.surplus <= eps {
				continue
			}
			want := dst.deficit
			if src.surplus < want {
				want = src.surplus
			}
			moved := transfer(sc, linkUsed, src.region.ID, dst.region.ID, want)
			if moved <= 0 {
				continue
			}
			src.surplus -= moved
			dst.deficit -= moved
			src.ledger.TransferOutMW += moved
			dst.ledger.TransferInMW += moved
			if dst.deficit <= eps {
				break
			}
		}
	}

	// Step 4: each region's own fuel plant.
	for _, st := range states {
		if st.deficit <= eps {
			continue
		}
		fuel := st.deficit
		if cap := st.region.FuelCapacityMW[h]; fuel > cap {
			fuel = cap
		}
		st.fuelUsed = fuel
		st.deficit -= fuel
		st.ledger.FuelMW += fuel
	}

	// Step 5: fuel-backed transfers from spare fuel headroom. The exporter
	// generates extra fuel output that flows out on the same links, bounded
	// by whatever link capacity the direct phase left over.
	for _, dst := range states {
		if dst.deficit <= eps {
			continue
		}
		for _, src := range states {
			if src == dst {
				continue
			}
			spare := src.region.FuelCapacityMW[h] - src.fuelUsed
			if spare <= eps {
				continue
			}
			want := dst.deficit
			if spare < want {
				want = spare
			}
			moved := transfer(sc, linkUsed, src.region.ID, dst.region.ID, want)
			if moved <= 0 {
				continue
			}
			src.fuelUsed += moved
			dst.deficit -= moved
			src.ledger.FuelMW += moved
			src.ledger.FuelBackedTransferOutMW += moved
			dst.ledger.FuelBackedTransferInMW += moved
			if dst.deficit <= eps {
				break
			}
		}
	}

	// Step 6: whatever remains is unserved demand or curtailed surplus.
	for _, st := range states {
		if st.deficit > eps {
			st.ledger.UnservedMW = st.deficit
		}
		st.deficit = 0
		if st.surplus > eps {
			st.ledger.CurtailmentMW = st.surplus
		}
		st.surplus = 0
		st.ledger.RenewableUsedMW = st.ledger.RenewableGeneratedMW - st.ledger.CurtailmentMW
		st.ledger.SoCAfterMWh = st.soc
	}
}

// transfer moves up to want MW between two regions across the links joining
// them, honouring the capacity already consumed this hour by either phase.
// It returns the amount actually moved.
func transfer(sc model.Scenario, linkUsed []float64, from, to string, want float64) float64 {
	if want <= eps {
		return 0
	}
	moved := 0.0
	for i, l := range sc.Links {
		if !l.Connects(from, to) {
			continue
		}
		headroom := l.CapacityMW - linkUsed[i]
		if headroom <= eps {
			continue
		}
		step := want - moved
		if step > headroom {
			step = headroom
		}
		linkUsed[i] += step
		moved += step
		if moved >= want-eps {
			break
		}
	}
	return moved
}

func (st *regionState) beginHour(h int) {
	st.ledger = model.HourlyLedger{
		Region:               st.region.ID,
		Hour:                 h,
		LoadMW:               st.region.LoadMW[h],
		RenewableGeneratedMW: st.region.RenewableMW(h),
	}
	st.fuelUsed = 0
}

// applyRenewable serves load directly from renewables and splits the hour
// into a remaining deficit or an exportable surplus.
func (st *regionState) applyRenewable() {
	load := st.ledger.LoadMW
	gen := st.ledger.RenewableGeneratedMW
	if gen >= load {
		st.surplus = gen - load
		st.deficit = 0
	} else {
		st.deficit = load - gen
		st.surplus = 0
	}
}

// applyBattery charges from surplus or discharges into the deficit, within
// the power limit, the SoC bounds and the hour's reservation target.
func (st *regionState) applyBattery(h int) {
	b := st.region.Battery
	if b.PowerMW <= 0 || b.CapacityMWh <= 0 {
		return
	}
	oneWay := b.OneWayEfficiency()

	if st.surplus > eps {
		headroom := b.CapacityMWh - st.soc
		charge := min3(st.surplus, b.PowerMW, headroom/oneWay)
		if charge > eps {
			st.soc += charge * oneWay
			st.surplus -= charge
			st.ledger.BatteryChargeMW = charge
		}
		return
	}

	if st.deficit > eps {
		available := st.soc - st.targets[h]
		if available < 0 {
			available = 0
		}
		discharge := min3(st.deficit, b.PowerMW, available*oneWay)
		if discharge > eps {
			st.soc -= discharge / oneWay
			st.deficit -= discharge
			st.ledger.BatteryDischargeMW = discharge
		}
	}
}

func checkInvariants(st *regionState, h int) error {
	b := st.region.Battery
	if st.soc < -1e-6 || st.soc > b.CapacityMWh+1e-6 {
		return &InvariantError{Region: st.region.ID, Hour: h, Detail: fmt.Sprintf("SoC %g outside [0, %g]", st.soc, b.CapacityMWh)}
	}
	if r := st.ledger.BalanceResidual(); r > 1e-6 {
		return &InvariantError{Region: st.region.ID, Hour: h, Detail: fmt.Sprintf("energy balance off by %g", r)}
	}
	if r := st.ledger.GenerationResidual(); r > 1e-6 {
		return &InvariantError{Region: st.region.ID, Hour: h, Detail: fmt.Sprintf("renewable split off by %g", r)}
	}
	return nil
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
