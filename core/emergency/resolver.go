// Package emergency finds donor warehouses for critical restocks and
// triggers expedited dispatches.
package emergency

import (
	"context"
	"errors"
	"sort"

	"github.com/fleetgrid/supplyline/core/dispatch"
	"github.com/fleetgrid/supplyline/core/geo"
	"github.com/fleetgrid/supplyline/core/logger"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/planner"
	"github.com/fleetgrid/supplyline/core/store"
)

// donorThreshold is the minimum surplus stock a warehouse must hold to
// qualify as a donor.
const donorThreshold = 100

// restockQuantity is the default emergency transfer size.
const restockQuantity = 200

// Donor is a candidate source warehouse for the critical product.
type Donor struct {
	WarehouseID   int     `json:"warehouse_id"`
	Name          string  `json:"name"`
	Stock         int     `json:"stock"`
	DistanceMiles float64 `json:"distance_miles"`
}

// Plan is the outcome of an emergency resolution. It enumerates the
// candidate donors even when no truck is available; in that case
// Recommendation is set and Truck/Route stay empty.
type Plan struct {
	WarehouseID    int          `json:"warehouse_id"`
	Warehouse      string       `json:"warehouse"`
	Product        string       `json:"product"`
	CriticalLevel  int          `json:"critical_level"`
	CurrentStock   int          `json:"current_stock"`
	Donors         []Donor      `json:"donors"`
	Route          *model.Route `json:"route,omitempty"`
	TruckID        string       `json:"truck_id,omitempty"`
	Driver         string       `json:"driver,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	Narrative      string       `json:"narrative,omitempty"`
}

// Resolver coordinates donor selection and expedited dispatch.
type Resolver struct {
	store    *store.FleetStore
	selector *dispatch.Selector
	log      logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(st *store.FleetStore, sel *dispatch.Selector, log logger.Logger) *Resolver {
	return &Resolver{store: st, selector: sel, log: log}
}

// Resolve builds an emergency restock plan for the target warehouse.
// Unknown targets fail with NotFoundError; everything else degrades to
// a recommendation rather than a hard failure.
func (r *Resolver) Resolve(ctx context.Context, warehouseID int, product string, criticalLevel int) (Plan, error) {
	target, err := r.store.GetWarehouse(warehouseID)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		WarehouseID:   warehouseID,
		Warehouse:     target.Name,
		Product:       product,
		CriticalLevel: criticalLevel,
		CurrentStock:  target.Stock(product),
	}

	for _, w := range r.store.Warehouses() {
		if w.ID == warehouseID {
			continue
		}
		if stock := w.Stock(product); stock > donorThreshold {
			plan.Donors = append(plan.Donors, Donor{
				WarehouseID:   w.ID,
				Name:          w.Name,
				Stock:         stock,
				DistanceMiles: geo.Distance(w.Lat, w.Lng, target.Lat, target.Lng),
			})
		}
	}
	if len(plan.Donors) == 0 {
		plan.Recommendation = "no donor warehouse holds sufficient stock, source externally"
		return plan, nil
	}
	sort.Slice(plan.Donors, func(i, j int) bool {
		return plan.Donors[i].DistanceMiles < plan.Donors[j].DistanceMiles
	})

	donor, err := r.store.GetWarehouse(plan.Donors[0].WarehouseID)
	if err != nil {
		return Plan{}, err
	}
	route, err := planner.Plan([]model.Warehouse{donor}, []planner.DeliveryRequest{{
		Name:     target.Name,
		Lat:      target.Lat,
		Lng:      target.Lng,
		Quantity: restockQuantity,
		Priority: string(model.PriorityHigh),
	}})
	if err != nil {
		return Plan{}, err
	}
	route.Priority = model.PriorityHigh

	asn, err := r.selector.DispatchEmergency(ctx, route, product)
	if err != nil {
		var nc *model.NoCapacityError
		if errors.As(err, &nc) {
			plan.Recommendation = "no truck available, recommend waiting for fleet availability"
			if r.log != nil {
				r.log.Warnf("emergency restock for %s at %s: no idle truck", product, target.Name)
			}
			return plan, nil
		}
		return Plan{}, err
	}
	route.TruckID = asn.TruckID
	plan.Route = &route
	plan.TruckID = asn.TruckID
	plan.Driver = asn.Driver
	if r.log != nil {
		r.log.Infof("emergency restock: %d units of %s from %s to %s via %s",
			restockQuantity, product, donor.Name, target.Name, asn.TruckID)
	}
	return plan, nil
}
