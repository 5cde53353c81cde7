package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fleetgrid/supplyline/core/metrics"
)

// PromSink records fleet events in Prometheus metrics.
type PromSink struct {
	dispatches  *prometheus.CounterVec
	forecasts   *prometheus.CounterVec
	ticks       prometheus.Counter
	activeRts   prometheus.Gauge
	efficiency  prometheus.Gauge
	fuelSaved   prometheus.Gauge
	co2Reduced  prometheus.Gauge
	subscribers prometheus.Gauge
	enRoute     prometheus.Gauge
}

// NewPromSink registers fleet metrics on the default Prometheus
// registerer. The Prometheus server should be started separately with
// StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_dispatches_total",
			Help: "Total number of truck dispatches",
		}, []string{"truck_id", "emergency"}),
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_forecasts_total",
			Help: "Total number of demand forecasts computed",
		}, []string{"region"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_telemetry_ticks_total",
			Help: "Total number of telemetry simulation ticks",
		}),
		activeRts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_active_routes",
			Help: "Number of currently active routes",
		}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_efficiency_score",
			Help: "Global fleet efficiency score",
		}),
		fuelSaved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_fuel_saved_total",
			Help: "Cumulative fuel saved across the fleet",
		}),
		co2Reduced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_co2_reduced_total",
			Help: "Cumulative CO2 reduced across the fleet",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_telemetry_subscribers",
			Help: "Number of observers that received the last tick",
		}),
		enRoute: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_trucks_en_route",
			Help: "Number of trucks currently en-route",
		}),
	}
	collectors := []prometheus.Collector{
		s.dispatches, s.forecasts, s.ticks,
		s.activeRts, s.efficiency, s.fuelSaved, s.co2Reduced,
		s.subscribers, s.enRoute,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordDispatch increments the dispatch counter and the active-routes
// gauge.
func (s *PromSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	s.dispatches.WithLabelValues(ev.TruckID, strconv.FormatBool(ev.Emergency)).Inc()
	s.activeRts.Inc()
	return nil
}

// RecordTick refreshes the gauges from the tick snapshot.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	s.ticks.Inc()
	s.activeRts.Set(float64(ev.Metrics.ActiveRoutes))
	s.efficiency.Set(ev.Metrics.EfficiencyScore)
	s.fuelSaved.Set(ev.Metrics.FuelSaved)
	s.co2Reduced.Set(ev.Metrics.CO2Reduced)
	s.subscribers.Set(float64(ev.Subscribers))
	s.enRoute.Set(float64(ev.EnRouteTrucks))
	return nil
}

// RecordForecast increments the per-region forecast counter.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.forecasts.WithLabelValues(ev.Region).Inc()
	return nil
}
