package model

import "math"

// HourlyLedger records the complete allocation for one region-hour. Ledgers
// are created once by the dispatch engine and never mutated afterwards.
//
// Two balances hold for every ledger, within floating-point tolerance:
//
//	load = renewable_used - battery_charge + battery_discharge
//	       + transfer_in - transfer_out + fuel + unserved
//	renewable_generated = renewable_used + curtailment
//
// where transfer_in/out cover both direct and fuel-backed flows.
type HourlyLedger struct {
	Region string
	Hour   int

	LoadMW               float64
	RenewableGeneratedMW float64
	RenewableUsedMW      float64

	BatteryChargeMW    float64
	BatteryDischargeMW float64
	SoCAfterMWh        float64

	TransferInMW            float64
	TransferOutMW           float64
	FuelBackedTransferInMW  float64
	FuelBackedTransferOutMW float64

	FuelMW        float64
	CurtailmentMW float64
	UnservedMW    float64
}

// NetTransferInMW returns imports minus exports, counting both direct and
// fuel-backed flows.
func (l HourlyLedger) NetTransferInMW() float64 {
	return l.TransferInMW + l.FuelBackedTransferInMW - l.TransferOutMW - l.FuelBackedTransferOutMW
}

// BalanceResidual returns how far the ledger is from exact energy balance.
// A conforming engine keeps this within numerical noise of zero.
func (l HourlyLedger) BalanceResidual() float64 {
	served := l.RenewableUsedMW - l.BatteryChargeMW + l.BatteryDischargeMW +
		l.NetTransferInMW() + l.FuelMW + l.UnservedMW
	return math.Abs(l.LoadMW - served)
}

// GenerationResidual returns the distance from the renewable split balance.
func (l HourlyLedger) GenerationResidual() float64 {
	return math.Abs(l.RenewableGeneratedMW - l.RenewableUsedMW - l.CurtailmentMW)
}
