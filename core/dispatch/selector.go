// Package dispatch assigns idle trucks to planned routes.
package dispatch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/fleetgrid/supplyline/core/history"
	"github.com/fleetgrid/supplyline/core/logger"
	"github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/store"
)

// waitRecommendation is returned with NoCapacityError; the caller may
// retry once a truck frees up.
const waitRecommendation = "Wait for trucks to complete current routes"

// efficiencyNudge is added to the global efficiency score per dispatch,
// capped at efficiencyCeiling.
const (
	efficiencyNudge   = 0.5
	efficiencyCeiling = 99.0
)

var errTruckTaken = errors.New("truck no longer idle")

// Assignment is the result of a successful dispatch.
type Assignment struct {
	TruckID             string  `json:"dispatched_truck"`
	Driver              string  `json:"driver"`
	RouteID             string  `json:"route_id"`
	RouteName           string  `json:"route_name"`
	EstimatedCompletion string  `json:"estimated_completion"`
	EfficiencyRating    float64 `json:"efficiency_rating"`
}

// Selector assigns the best idle truck to a planned route. Selection is
// by maximum truck efficiency with ties broken by first-seen order.
// Truck capacity is not weighed against requested quantities.
type Selector struct {
	store *store.FleetStore
	log   logger.Logger
	sink  metrics.MetricsSink
	hist  history.Store
}

// NewSelector creates a Selector. sink and hist may be nil.
func NewSelector(st *store.FleetStore, log logger.Logger, sink metrics.MetricsSink, hist history.Store) *Selector {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Selector{store: st, log: log, sink: sink, hist: hist}
}

// Dispatch picks the most efficient idle truck, moves it to en-route
// with the route's waypoints and updates the global counters. It
// returns ValidationError for a route without waypoints and
// NoCapacityError when no idle truck exists.
func (s *Selector) Dispatch(ctx context.Context, route model.Route) (Assignment, error) {
	return s.dispatch(ctx, route, false, "")
}

// DispatchEmergency behaves like Dispatch but tags the history record
// as an emergency restock for the given product.
func (s *Selector) DispatchEmergency(ctx context.Context, route model.Route, product string) (Assignment, error) {
	return s.dispatch(ctx, route, true, product)
}

func (s *Selector) dispatch(ctx context.Context, route model.Route, emergency bool, product string) (Assignment, error) {
	if len(route.Waypoints) == 0 {
		return Assignment{}, model.NewValidationError("route has no waypoints")
	}

	idle := s.store.IdleTrucks()
	if len(idle) == 0 {
		return Assignment{}, &model.NoCapacityError{Recommendation: waitRecommendation}
	}

	// Highest efficiency first; stable sort preserves first-seen order
	// between equal scores.
	sort.SliceStable(idle, func(i, j int) bool { return idle[i].Efficiency > idle[j].Efficiency })

	var chosen model.Truck
	found := false
	for _, cand := range idle {
		err := s.store.MutateTruck(cand.ID, func(t *model.Truck) error {
			// Re-check under the record lock: a concurrent dispatch may
			// have taken this truck since the idle listing.
			if !t.Idle() {
				return errTruckTaken
			}
			t.Status = model.StatusEnRoute
			t.Route = append([]model.Waypoint(nil), route.Waypoints...)
			t.TotalStops = len(route.Waypoints)
			chosen = t.Clone()
			return nil
		})
		if err == nil {
			found = true
			break
		}
		if !errors.Is(err, errTruckTaken) {
			return Assignment{}, err
		}
	}
	if !found {
		return Assignment{}, &model.NoCapacityError{Recommendation: waitRecommendation}
	}

	s.store.UpdateMetrics(func(m *model.PerformanceMetrics) {
		m.ActiveRoutes++
		m.EfficiencyScore += efficiencyNudge
		if m.EfficiencyScore > efficiencyCeiling {
			m.EfficiencyScore = efficiencyCeiling
		}
	})

	if s.log != nil {
		s.log.Infof("dispatched truck %s (driver %s) on %s, %d stops", chosen.ID, chosen.Driver, route.ID, len(route.Waypoints))
	}
	if err := s.sink.RecordDispatch(metrics.DispatchEvent{
		TruckID:       chosen.ID,
		RouteID:       route.ID,
		Stops:         len(route.Waypoints),
		DistanceMiles: route.DistanceMiles,
		Efficiency:    route.Efficiency,
		Emergency:     emergency,
		Time:          time.Now(),
	}); err != nil && s.log != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
	if s.hist != nil {
		rec := history.LogRecord{
			Timestamp:     time.Now(),
			RouteID:       route.ID,
			RouteName:     route.Name,
			TruckID:       chosen.ID,
			Driver:        chosen.Driver,
			Stops:         len(route.Waypoints),
			DistanceMiles: route.DistanceMiles,
			Efficiency:    route.Efficiency,
			Emergency:     emergency,
			Product:       product,
		}
		if err := s.hist.Append(ctx, rec); err != nil && s.log != nil {
			s.log.Warnf("dispatch log append: %v", err)
		}
	}

	return Assignment{
		TruckID:             chosen.ID,
		Driver:              chosen.Driver,
		RouteID:             route.ID,
		RouteName:           route.Name,
		EstimatedCompletion: route.EstimatedTime,
		EfficiencyRating:    chosen.Efficiency,
	}, nil
}
