package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/store"
)

func fleet(trucks ...model.Truck) *store.FleetStore {
	return store.New(nil, trucks)
}

func testRoute() model.Route {
	return model.Route{
		ID:   "route_test",
		Name: "Optimized Route - 3 stops",
		Waypoints: []model.Waypoint{
			{Label: "Dallas DC", Kind: model.WaypointPickup},
			{Label: "Plano Store", Kind: model.WaypointDelivery},
			{Label: "Frisco Store", Kind: model.WaypointDelivery},
		},
		DistanceMiles: 42,
		EstimatedTime: "0h 56m",
		Efficiency:    95.8,
	}
}

func TestDispatch_PicksHighestEfficiency(t *testing.T) {
	st := fleet(
		model.Truck{ID: "T001", Driver: "John Smith", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5},
		model.Truck{ID: "T002", Driver: "Sarah Johnson", Capacity: 120, Status: model.StatusIdle, Efficiency: 97.2},
		model.Truck{ID: "T003", Driver: "Mike Wilson", Capacity: 110, Status: model.StatusIdle, Efficiency: 96.8},
		model.Truck{ID: "T004", Driver: "Lisa Brown", Capacity: 95, Status: model.StatusIdle, Efficiency: 98.0},
	)
	sel := NewSelector(st, nil, nil, nil)
	asn, err := sel.Dispatch(context.Background(), testRoute())
	if err != nil {
		t.Fatal(err)
	}
	if asn.TruckID != "T001" {
		t.Fatalf("selected %s, want T001 (efficiency 98.5)", asn.TruckID)
	}
	tr, _ := st.GetTruck("T001")
	if tr.Status != model.StatusEnRoute {
		t.Fatalf("truck status = %s, want en-route", tr.Status)
	}
	if len(tr.Route) != 3 || tr.TotalStops != 3 {
		t.Fatalf("route not assigned: %d waypoints, %d stops", len(tr.Route), tr.TotalStops)
	}
}

func TestDispatch_TieBreakFirstSeen(t *testing.T) {
	st := fleet(
		model.Truck{ID: "T001", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.0},
		model.Truck{ID: "T002", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.0},
	)
	sel := NewSelector(st, nil, nil, nil)
	asn, err := sel.Dispatch(context.Background(), testRoute())
	if err != nil {
		t.Fatal(err)
	}
	if asn.TruckID != "T001" {
		t.Fatalf("tie should go to first-seen truck, got %s", asn.TruckID)
	}
}

func TestDispatch_NoCapacity(t *testing.T) {
	st := fleet(model.Truck{ID: "T001", Capacity: 100, Status: model.StatusEnRoute, Efficiency: 98.5})
	sel := NewSelector(st, nil, nil, nil)
	_, err := sel.Dispatch(context.Background(), testRoute())
	var nc *model.NoCapacityError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NoCapacityError, got %v", err)
	}
	if nc.Recommendation == "" {
		t.Fatal("NoCapacityError should carry a recommendation")
	}
}

func TestDispatch_RejectsEmptyRoute(t *testing.T) {
	st := fleet(model.Truck{ID: "T001", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5})
	sel := NewSelector(st, nil, nil, nil)

	route := testRoute()
	route.Waypoints = nil
	_, err := sel.Dispatch(context.Background(), route)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The fleet is untouched: an idle truck must never carry an empty
	// route while marked en-route.
	tr, _ := st.GetTruck("T001")
	if tr.Status != model.StatusIdle || len(tr.Route) != 0 {
		t.Fatalf("truck mutated by rejected dispatch: %+v", tr)
	}
}

func TestDispatch_UpdatesGlobalCounters(t *testing.T) {
	st := fleet(model.Truck{ID: "T001", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5})
	st.UpdateMetrics(func(m *model.PerformanceMetrics) { m.EfficiencyScore = 98.8 })
	sel := NewSelector(st, nil, nil, nil)
	if _, err := sel.Dispatch(context.Background(), testRoute()); err != nil {
		t.Fatal(err)
	}
	m := st.Metrics()
	if m.ActiveRoutes != 1 {
		t.Fatalf("active routes = %d, want 1", m.ActiveRoutes)
	}
	if m.EfficiencyScore != 99 {
		t.Fatalf("efficiency score = %f, want cap at 99", m.EfficiencyScore)
	}
}

type countingSink struct {
	mu         sync.Mutex
	dispatches []metrics.DispatchEvent
}

func (c *countingSink) RecordDispatch(ev metrics.DispatchEvent) error {
	c.mu.Lock()
	c.dispatches = append(c.dispatches, ev)
	c.mu.Unlock()
	return nil
}

func (c *countingSink) RecordTick(metrics.TickEvent) error { return nil }

func TestDispatch_RecordsMetrics(t *testing.T) {
	st := fleet(model.Truck{ID: "T001", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5})
	sink := &countingSink{}
	sel := NewSelector(st, nil, sink, nil)
	if _, err := sel.DispatchEmergency(context.Background(), testRoute(), "milk"); err != nil {
		t.Fatal(err)
	}
	if len(sink.dispatches) != 1 || !sink.dispatches[0].Emergency {
		t.Fatalf("unexpected sink events: %+v", sink.dispatches)
	}
}

func TestDispatch_ConcurrentSingleTruck(t *testing.T) {
	st := fleet(model.Truck{ID: "T001", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5})
	sel := NewSelector(st, nil, nil, nil)

	var wg sync.WaitGroup
	wins := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if asn, err := sel.Dispatch(context.Background(), testRoute()); err == nil {
				wins <- asn.TruckID
			}
		}()
	}
	wg.Wait()
	close(wins)
	n := 0
	for range wins {
		n++
	}
	if n != 1 {
		t.Fatalf("%d dispatches succeeded for a single idle truck, want 1", n)
	}
}
