// Package app wires the fleet engine together from configuration and
// runs its background loops.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/fleetgrid/supplyline/api/dispatchlog"
	"github.com/fleetgrid/supplyline/api/fleet"
	"github.com/fleetgrid/supplyline/config"
	"github.com/fleetgrid/supplyline/core/analysis"
	"github.com/fleetgrid/supplyline/core/dispatch"
	"github.com/fleetgrid/supplyline/core/emergency"
	"github.com/fleetgrid/supplyline/core/forecast"
	corehistory "github.com/fleetgrid/supplyline/core/history"
	coremetrics "github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/narrate"
	"github.com/fleetgrid/supplyline/core/planner"
	"github.com/fleetgrid/supplyline/core/store"
	"github.com/fleetgrid/supplyline/core/telemetry"
	"github.com/fleetgrid/supplyline/infra/history"
	"github.com/fleetgrid/supplyline/infra/logger"
	"github.com/fleetgrid/supplyline/infra/metrics"
	"github.com/fleetgrid/supplyline/infra/mqtt"
)

// Service orchestrates the fleet store, dispatch selector, forecaster,
// emergency resolver and telemetry broadcaster.
type Service struct {
	cfg         *config.Config
	log         logger.Logger
	store       *store.FleetStore
	selector    *dispatch.Selector
	forecaster  *forecast.Engine
	resolver    *emergency.Resolver
	broadcaster *telemetry.Broadcaster
	narrator    narrate.Narrator
	sink        coremetrics.MetricsSink
	hist        corehistory.Store
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var hist corehistory.Store
	var err error
	switch cfg.History.Backend {
	case "sqlite":
		hist, err = history.NewSQLiteStore(cfg.History.Path)
	default:
		hist, err = history.NewJSONLStore(cfg.History.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	st := store.New(cfg.Seed.Warehouses, cfg.Seed.Trucks)
	sel := dispatch.NewSelector(st, logger.New("dispatch"), sink, hist)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	bc := telemetry.New(st, cfg.Telemetry, rng, logger.New("telemetry"), sink)

	return &Service{
		cfg:         cfg,
		log:         logg,
		store:       st,
		selector:    sel,
		forecaster:  forecast.NewEngine(cfg.Seed.Demand),
		resolver:    emergency.NewResolver(st, sel, logger.New("emergency")),
		broadcaster: bc,
		narrator:    narrate.Nop{},
		sink:        sink,
		hist:        hist,
	}, nil
}

// SetNarrator replaces the commentary source. Nil restores the no-op.
func (s *Service) SetNarrator(n narrate.Narrator) {
	if n == nil {
		n = narrate.Nop{}
	}
	s.narrator = n
}

// GetState returns the full synchronous state view.
func (s *Service) GetState() model.StateSnapshot {
	return s.store.Snapshot()
}

// PlanRoute builds an optimized route from the origin warehouse through
// the requested deliveries.
func (s *Service) PlanRoute(ctx context.Context, originID int, deliveries []planner.DeliveryRequest) (model.Route, error) {
	origin, err := s.store.GetWarehouse(originID)
	if err != nil {
		return model.Route{}, err
	}
	route, err := planner.Plan([]model.Warehouse{origin}, deliveries)
	if err != nil {
		return model.Route{}, err
	}
	s.log.Infof("planned route %s: %d stops, %.1f miles", route.ID, len(route.Waypoints), route.DistanceMiles)
	return route, nil
}

// Dispatch assigns the best idle truck to the route.
func (s *Service) Dispatch(ctx context.Context, route model.Route) (dispatch.Assignment, error) {
	return s.selector.Dispatch(ctx, route)
}

// Forecast projects demand for the region over the horizon.
func (s *Service) Forecast(ctx context.Context, region string, horizonDays int) (model.RegionForecast, error) {
	fc, err := s.forecaster.Forecast(region, horizonDays)
	if err != nil {
		return model.RegionForecast{}, err
	}
	if rec, ok := s.sink.(coremetrics.ForecastRecorder); ok {
		if err := rec.RecordForecast(coremetrics.ForecastEvent{
			Region: region, Products: len(fc.Products), Time: time.Now(),
		}); err != nil {
			s.log.Errorf("record forecast: %v", err)
		}
	}
	fc.Narrative = s.narrative(ctx, "forecast", region, map[string]any{
		"total_predicted": fc.TotalPredicted,
		"horizon_days":    horizonDays,
	})
	return fc, nil
}

// ResolveEmergency plans and dispatches a critical restock transfer.
func (s *Service) ResolveEmergency(ctx context.Context, warehouseID int, product string, criticalLevel int) (emergency.Plan, error) {
	plan, err := s.resolver.Resolve(ctx, warehouseID, product, criticalLevel)
	if err != nil {
		return emergency.Plan{}, err
	}
	plan.Narrative = s.narrative(ctx, "emergency", plan.Warehouse, map[string]any{
		"product": product,
		"donors":  len(plan.Donors),
	})
	return plan, nil
}

// Analyze scans inventory and fleet state into a status report.
func (s *Service) Analyze(ctx context.Context) (analysis.Report, error) {
	rep := analysis.Analyze(s.store.Snapshot())
	rep.Narrative = s.narrative(ctx, "analysis", "supply chain", map[string]any{
		"restock_recommendations": len(rep.Restock),
	})
	return rep, nil
}

// Subscribe registers a telemetry observer.
func (s *Service) Subscribe() *telemetry.Subscriber {
	return s.broadcaster.Subscribe()
}

// Unsubscribe removes a telemetry observer.
func (s *Service) Unsubscribe(sub *telemetry.Subscriber) {
	s.broadcaster.Unsubscribe(sub)
}

// narrative asks the narrator for commentary. Failures are logged and
// the flow continues without text.
func (s *Service) narrative(ctx context.Context, kind, subject string, payload map[string]any) string {
	text, err := s.narrator.Narrate(ctx, narrate.Context{Kind: kind, Subject: subject, Payload: payload})
	if err != nil {
		s.log.Warnf("narrator failed for %s: %v", kind, err)
		return ""
	}
	return text
}

// Handler returns the HTTP API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	fleet.Register(mux, s)
	mux.Handle("/api/dispatch/logs", dispatchlog.NewLogHandler(s.hist))
	return mux
}

// Run starts the background loops and the HTTP servers, blocking until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.broadcaster.Run(ctx)

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.cfg.MQTT.Enabled {
		bridge, err := mqtt.NewBridge(s.cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			return fmt.Errorf("mqtt bridge: %w", err)
		}
		sub := s.broadcaster.Subscribe()
		go func() {
			defer bridge.Close()
			bridge.Run(ctx, sub.Updates())
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.API.ShutdownSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	return s.hist.Close()
}
