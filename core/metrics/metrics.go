// Package metrics defines the sink interfaces fed by the dispatch
// selector and the telemetry loop. Implementations live in
// infra/metrics.
package metrics

import (
	"time"

	"github.com/fleetgrid/supplyline/core/model"
)

// Config selects and parameterizes the metrics backends.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// DispatchEvent records one truck assignment.
type DispatchEvent struct {
	TruckID       string
	RouteID       string
	Stops         int
	DistanceMiles float64
	Efficiency    float64
	Emergency     bool
	Time          time.Time
}

// TickEvent records one telemetry simulation step.
type TickEvent struct {
	EnRouteTrucks int
	Subscribers   int
	Metrics       model.PerformanceMetrics
	Time          time.Time
}

// ForecastEvent records one demand forecast computation.
type ForecastEvent struct {
	Region   string
	Products int
	Time     time.Time
}

// MetricsSink receives dispatch and telemetry events.
type MetricsSink interface {
	RecordDispatch(ev DispatchEvent) error
	RecordTick(ev TickEvent) error
}

// ForecastRecorder is implemented by sinks interested in forecast events.
type ForecastRecorder interface {
	RecordForecast(ev ForecastEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordDispatch(DispatchEvent) error { return nil }
func (NopSink) RecordTick(TickEvent) error         { return nil }
func (NopSink) RecordForecast(ForecastEvent) error { return nil }
