package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/enerflow/gridbalance/core/metrics"
)

// PromSink exposes run KPIs and stress counts as Prometheus metrics.
type PromSink struct {
	kpis     *prometheus.GaugeVec
	stress   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewPromSink registers the run metrics on the provided registerer. If reg
// is nil, the default registerer is used. Already-registered collectors are
// reused so repeated construction in tests is safe.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	kpis := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grid_run_kpi",
		Help: "KPI values of the most recent dispatch run",
	}, []string{"kpi"})
	stress := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grid_stress_events_total",
		Help: "Total number of stress events observed across runs",
	}, []string{"severity", "region"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grid_run_duration_seconds",
		Help:    "Wall-clock duration of a full pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(kpis); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			kpis = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(stress); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stress = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{kpis: kpis, stress: stress, duration: duration}, nil
}

// RecordRun publishes the summary.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	k := sum.KPIs
	s.kpis.WithLabelValues("unserved_mwh").Set(k.UnservedMWh)
	s.kpis.WithLabelValues("fuel_mwh").Set(k.FuelMWh)
	s.kpis.WithLabelValues("curtailment_mwh").Set(k.CurtailmentMWh)
	s.kpis.WithLabelValues("renewable_utilization").Set(k.RenewableUtilization)
	s.kpis.WithLabelValues("transfer_utilization").Set(k.TransferUtilization)
	s.kpis.WithLabelValues("battery_cycles_proxy").Set(k.BatteryCyclesProxy)
	for _, ev := range sum.Events {
		s.stress.WithLabelValues(string(ev.Severity), ev.Region).Inc()
	}
	s.duration.Observe(sum.Duration.Seconds())
	return nil
}

// Close is a no-op; collectors stay registered.
func (s *PromSink) Close() error { return nil }
