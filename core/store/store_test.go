package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fleetgrid/supplyline/core/model"
)

func seedStore() *FleetStore {
	return New(
		[]model.Warehouse{
			{ID: 1, Name: "Dallas DC", Lat: 32.7767, Lng: -96.7970, Role: model.RoleMain,
				Inventory: map[string]int{"cereal": 1250, "milk": 890}, Capacity: 2000},
			{ID: 2, Name: "Houston DC", Lat: 29.7604, Lng: -95.3698, Role: model.RoleMain,
				Inventory: map[string]int{"cereal": 890, "milk": 1100}, Capacity: 2000},
		},
		[]model.Truck{
			{ID: "T001", Driver: "John Smith", Capacity: 100, Status: model.StatusIdle, Efficiency: 98.5},
			{ID: "T002", Driver: "Sarah Johnson", Capacity: 120, Status: model.StatusIdle, Efficiency: 97.2},
		},
	)
}

func TestGetNotFound(t *testing.T) {
	s := seedStore()
	_, err := s.GetWarehouse(99)
	var nf *model.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := s.GetTruck("T999"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestReadersGetCopies(t *testing.T) {
	s := seedStore()
	w, err := s.GetWarehouse(1)
	if err != nil {
		t.Fatal(err)
	}
	w.Inventory["cereal"] = 0
	again, _ := s.GetWarehouse(1)
	if again.Inventory["cereal"] != 1250 {
		t.Fatal("mutating a returned warehouse leaked into the store")
	}
}

func TestMutateDiscardedOnError(t *testing.T) {
	s := seedStore()
	err := s.MutateTruck("T001", func(tr *model.Truck) error {
		tr.Status = model.StatusEnRoute
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected error from fn")
	}
	tr, _ := s.GetTruck("T001")
	if tr.Status != model.StatusIdle {
		t.Fatal("failed mutation was applied")
	}
}

func TestIdleTrucksStableOrder(t *testing.T) {
	s := seedStore()
	idle := s.IdleTrucks()
	if len(idle) != 2 || idle[0].ID != "T001" || idle[1].ID != "T002" {
		t.Fatalf("unexpected idle ordering: %v", idle)
	}
	if err := s.MutateTruck("T001", func(tr *model.Truck) error {
		tr.Status = model.StatusEnRoute
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	idle = s.IdleTrucks()
	if len(idle) != 1 || idle[0].ID != "T002" {
		t.Fatalf("expected only T002 idle, got %v", idle)
	}
}

func TestConcurrentMutationsSameRecord(t *testing.T) {
	s := seedStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.MutateWarehouse(1, func(w *model.Warehouse) error {
				w.Inventory["milk"]++
				return nil
			})
		}()
	}
	wg.Wait()
	w, _ := s.GetWarehouse(1)
	if w.Inventory["milk"] != 990 {
		t.Fatalf("lost updates: milk = %d, want 990", w.Inventory["milk"])
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	s := seedStore()
	a := s.Snapshot()
	b := s.Snapshot()
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Fatal("snapshots differ without intervening mutation")
	}
}

func TestUpdateMetrics(t *testing.T) {
	s := seedStore()
	s.UpdateMetrics(func(m *model.PerformanceMetrics) {
		m.ActiveRoutes++
		m.EfficiencyScore = 96.8
	})
	m := s.Metrics()
	if m.ActiveRoutes != 1 || m.EfficiencyScore != 96.8 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}
