// Package app wires configuration, the simulation pipeline, metrics sinks
// and exports into a runnable service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/enerflow/gridbalance/config"
	"github.com/enerflow/gridbalance/core/counterfactual"
	coremetrics "github.com/enerflow/gridbalance/core/metrics"
	"github.com/enerflow/gridbalance/core/model"
	coremon "github.com/enerflow/gridbalance/core/monitoring"
	"github.com/enerflow/gridbalance/core/sim"
	"github.com/enerflow/gridbalance/infra/history"
	"github.com/enerflow/gridbalance/infra/logger"
	"github.com/enerflow/gridbalance/infra/metrics"
	"github.com/enerflow/gridbalance/infra/monitoring"
	"github.com/enerflow/gridbalance/pkg/export"
)

// Service runs the dispatch pipeline for one configured scenario.
type Service struct {
	cfg      *config.Config
	scenario model.Scenario
	sink     coremetrics.Sink
	store    history.Store
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sc, err := cfg.Scenario()
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("init monitoring: %w", err)
	}
	coremon.Init(monitor)

	store, err := history.New(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx, logger.New("influx-sink")))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	return &Service{cfg: cfg, scenario: sc, sink: sink, store: store, log: logg}, nil
}

// Run executes the baseline pipeline once, records metrics and writes the
// configured exports. When the Prometheus endpoint is enabled it keeps
// serving until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	res, err := s.runOnce(ctx)
	if err != nil {
		return err
	}

	if s.cfg.Output.Dir != "" {
		if err := export.WriteRunArtifacts(s.cfg.Output.Dir, res); err != nil {
			return fmt.Errorf("export artifacts: %w", err)
		}
	}

	if s.cfg.Metrics.PrometheusEnabled {
		return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log)
	}
	return nil
}

// Recommend runs the counterfactual batch against the configured scenario
// and writes the ranked recommendations.
func (s *Service) Recommend(workers int) (*counterfactual.Ranking, error) {
	eng := counterfactual.Engine{Workers: workers, Log: s.log}
	ranking, err := eng.Rank(s.scenario, counterfactual.DefaultCandidates(s.scenario))
	if err != nil {
		coremon.CaptureRunFailure("", "counterfactual", err)
		return nil, err
	}
	for _, rec := range ranking.Recommendations {
		if rec.Failed() {
			s.log.Warnf("rank %d: %s: %s", rec.Rank, rec.Description, rec.Err)
			continue
		}
		s.log.Infof("rank %d: %s (score delta %.1f)", rec.Rank, rec.Description, rec.ScoreDelta)
	}
	if s.cfg.Output.Dir != "" {
		if err := export.WriteRecommendations(s.cfg.Output.Dir, ranking.Recommendations); err != nil {
			return nil, fmt.Errorf("export recommendations: %w", err)
		}
	}
	return ranking, nil
}

func (s *Service) runOnce(ctx context.Context) (*sim.Result, error) {
	start := time.Now()
	res, err := sim.Run(s.scenario)
	if err != nil {
		coremon.CaptureRunFailure("", "simulate", err)
		return nil, err
	}
	elapsed := time.Since(start)

	s.log.Infof("run %s: unserved %.1f MWh, fuel %.1f MWh, curtailment %.1f MWh, renewable utilization %.3f",
		res.RunID, res.KPIs.UnservedMWh, res.KPIs.FuelMWh, res.KPIs.CurtailmentMWh, res.KPIs.RenewableUtilization)
	for _, ev := range res.Events {
		if ev.Severity == model.SeverityCritical {
			s.log.Warnf("critical: region %s hour %d unserved %.1f MW", ev.Region, ev.Hour, ev.MagnitudeMW)
		}
	}

	if err := s.sink.RecordRun(coremetrics.RunSummary{
		RunID:    res.RunID,
		KPIs:     res.KPIs,
		Events:   res.Events,
		Duration: elapsed,
		Time:     start,
	}); err != nil {
		s.log.Errorf("record run metrics: %v", err)
	}
	if err := s.store.Append(ctx, history.RunRecord{
		Timestamp: start,
		RunID:     res.RunID,
		KPIs:      res.KPIs,
		Events:    res.Events,
	}); err != nil {
		s.log.Errorf("persist run record: %v", err)
		coremon.CaptureRunFailure(res.RunID, "history", err)
	}
	return res, nil
}

// Close releases the metrics sinks and the history store.
func (s *Service) Close() error {
	coremon.Flush(2 * time.Second)
	storeErr := s.store.Close()
	if err := s.sink.Close(); err != nil {
		return err
	}
	return storeErr
}
