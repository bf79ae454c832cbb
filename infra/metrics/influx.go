package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/enerflow/gridbalance/core/logger"
	coremetrics "github.com/enerflow/gridbalance/core/metrics"
)

// InfluxConfig holds the connection settings for an InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run summaries to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig, log logger.Logger) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      log,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a missing database never blocks a
// run.
func NewInfluxSinkWithFallback(cfg InfluxConfig, log logger.Logger) coremetrics.Sink {
	sink := NewInfluxSink(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			log.Errorf("influx health check error: %v", err)
		} else {
			log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run KPIs as a single measurement point plus one point
// per stress event.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	k := sum.KPIs
	p := write.NewPointWithMeasurement("grid_run").
		AddTag("run_id", sum.RunID).
		AddField("total_load_mwh", k.TotalLoadMWh).
		AddField("unserved_mwh", k.UnservedMWh).
		AddField("fuel_mwh", k.FuelMWh).
		AddField("curtailment_mwh", k.CurtailmentMWh).
		AddField("renewable_utilization", k.RenewableUtilization).
		AddField("transfer_utilization", k.TransferUtilization).
		AddField("battery_cycles_proxy", k.BatteryCyclesProxy).
		AddField("duration_ms", sum.Duration.Milliseconds()).
		SetTime(sum.Time)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for _, ev := range sum.Events {
		ep := write.NewPointWithMeasurement("grid_stress_event").
			AddTag("run_id", sum.RunID).
			AddTag("region", ev.Region).
			AddTag("severity", string(ev.Severity)).
			AddField("hour", ev.Hour).
			AddField("magnitude_mw", ev.MagnitudeMW).
			SetTime(sum.Time)
		if err := s.writeAPI.WritePoint(ctx, ep); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
