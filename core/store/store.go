// Package store owns the authoritative warehouse and truck collections.
//
// Each record carries its own mutex: mutations to different records
// never block each other, mutations to the same record are serialized.
// The registry maps are only read after construction (records are never
// destroyed during the process lifetime), so lookups take a read lock
// on the registry and then the record lock.
package store

import (
	"strconv"
	"sync"

	"github.com/fleetgrid/supplyline/core/model"
)

type warehouseRecord struct {
	mu sync.Mutex
	w  model.Warehouse
}

type truckRecord struct {
	mu sync.Mutex
	t  model.Truck
}

// FleetStore is the single source of truth for fleet and warehouse state.
type FleetStore struct {
	mu         sync.RWMutex
	warehouses map[int]*warehouseRecord
	trucks     map[string]*truckRecord

	// seed order, used so listings are stable across calls
	warehouseOrder []int
	truckOrder     []string

	metricsMu sync.Mutex
	metrics   model.PerformanceMetrics
}

// New builds a store from seed data. Slice order is preserved for
// listings and for the dispatch selector's first-seen tie break.
func New(warehouses []model.Warehouse, trucks []model.Truck) *FleetStore {
	s := &FleetStore{
		warehouses: make(map[int]*warehouseRecord, len(warehouses)),
		trucks:     make(map[string]*truckRecord, len(trucks)),
	}
	for _, w := range warehouses {
		s.warehouses[w.ID] = &warehouseRecord{w: w.Clone()}
		s.warehouseOrder = append(s.warehouseOrder, w.ID)
	}
	for _, t := range trucks {
		s.trucks[t.ID] = &truckRecord{t: t.Clone()}
		s.truckOrder = append(s.truckOrder, t.ID)
	}
	return s
}

// GetWarehouse returns a consistent copy of the warehouse.
func (s *FleetStore) GetWarehouse(id int) (model.Warehouse, error) {
	s.mu.RLock()
	rec, ok := s.warehouses[id]
	s.mu.RUnlock()
	if !ok {
		return model.Warehouse{}, &model.NotFoundError{Kind: "warehouse", ID: strconv.Itoa(id)}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.w.Clone(), nil
}

// GetTruck returns a consistent copy of the truck.
func (s *FleetStore) GetTruck(id string) (model.Truck, error) {
	s.mu.RLock()
	rec, ok := s.trucks[id]
	s.mu.RUnlock()
	if !ok {
		return model.Truck{}, &model.NotFoundError{Kind: "truck", ID: id}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.t.Clone(), nil
}

// Warehouses lists all warehouses in seed order.
func (s *FleetStore) Warehouses() []model.Warehouse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Warehouse, 0, len(s.warehouseOrder))
	for _, id := range s.warehouseOrder {
		rec := s.warehouses[id]
		rec.mu.Lock()
		out = append(out, rec.w.Clone())
		rec.mu.Unlock()
	}
	return out
}

// Trucks lists all trucks in seed order.
func (s *FleetStore) Trucks() []model.Truck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Truck, 0, len(s.truckOrder))
	for _, id := range s.truckOrder {
		rec := s.trucks[id]
		rec.mu.Lock()
		out = append(out, rec.t.Clone())
		rec.mu.Unlock()
	}
	return out
}

// IdleTrucks lists idle trucks in seed order.
func (s *FleetStore) IdleTrucks() []model.Truck {
	var out []model.Truck
	for _, t := range s.Trucks() {
		if t.Idle() {
			out = append(out, t)
		}
	}
	return out
}

// MutateTruck applies fn under exclusive access to the single truck
// record. If fn returns an error the mutation is discarded.
func (s *FleetStore) MutateTruck(id string, fn func(*model.Truck) error) error {
	s.mu.RLock()
	rec, ok := s.trucks[id]
	s.mu.RUnlock()
	if !ok {
		return &model.NotFoundError{Kind: "truck", ID: id}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	cp := rec.t.Clone()
	if err := fn(&cp); err != nil {
		return err
	}
	rec.t = cp
	return nil
}

// MutateWarehouse applies fn under exclusive access to the single
// warehouse record. If fn returns an error the mutation is discarded.
func (s *FleetStore) MutateWarehouse(id int, fn func(*model.Warehouse) error) error {
	s.mu.RLock()
	rec, ok := s.warehouses[id]
	s.mu.RUnlock()
	if !ok {
		return &model.NotFoundError{Kind: "warehouse", ID: strconv.Itoa(id)}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	cp := rec.w.Clone()
	if err := fn(&cp); err != nil {
		return err
	}
	rec.w = cp
	return nil
}

// Metrics returns a copy of the process-wide counters.
func (s *FleetStore) Metrics() model.PerformanceMetrics {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	return s.metrics
}

// UpdateMetrics applies fn to the counters under the metrics lock.
func (s *FleetStore) UpdateMetrics(fn func(*model.PerformanceMetrics)) {
	s.metricsMu.Lock()
	fn(&s.metrics)
	s.metricsMu.Unlock()
}

// Snapshot returns the full state: warehouses, trucks and metrics.
// Records are copied one at a time; the snapshot is consistent per
// record, not across records, which is all the system requires.
func (s *FleetStore) Snapshot() model.StateSnapshot {
	return model.StateSnapshot{
		Warehouses: s.Warehouses(),
		Trucks:     s.Trucks(),
		Metrics:    s.Metrics(),
	}
}
