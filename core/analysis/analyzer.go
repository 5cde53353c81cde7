// Package analysis scans warehouse inventory for low-stock conditions
// and summarizes fleet state into a status report.
package analysis

import (
	"time"

	"github.com/fleetgrid/supplyline/core/model"
)

// Stock thresholds for restock recommendations.
const (
	lowStockThreshold     = 50
	highPriorityThreshold = 20
	restockQuantity       = 200
)

// WarehouseAnalysis is the per-warehouse inventory verdict.
type WarehouseAnalysis struct {
	WarehouseID   int            `json:"warehouse_id"`
	Name          string         `json:"name"`
	CurrentStock  map[string]int `json:"current_stock"`
	Status        string         `json:"status"`
	LowStockItems []string       `json:"low_stock_items,omitempty"`
}

// RestockRecommendation flags one low-stock product.
type RestockRecommendation struct {
	Warehouse          string `json:"warehouse"`
	Product            string `json:"product"`
	CurrentStock       int    `json:"current_stock"`
	RecommendedRestock int    `json:"recommended_restock"`
	Priority           string `json:"priority"`
}

// FleetSummary aggregates truck state.
type FleetSummary struct {
	TotalTrucks       int     `json:"total_trucks"`
	ActiveTrucks      int     `json:"active_trucks"`
	IdleTrucks        int     `json:"idle_trucks"`
	AverageEfficiency float64 `json:"average_efficiency"`
}

// Report is the full supply-chain status analysis.
type Report struct {
	Timestamp              time.Time                `json:"timestamp"`
	Warehouses             []WarehouseAnalysis      `json:"warehouse_analysis"`
	Restock                []RestockRecommendation  `json:"restock_recommendations"`
	TotalWarehouses        int                      `json:"total_warehouses_analyzed"`
	WarehousesNeedingStock int                      `json:"warehouses_needing_restock"`
	Fleet                  FleetSummary             `json:"fleet"`
	Metrics                model.PerformanceMetrics `json:"performance_metrics"`
	Narrative              string                   `json:"narrative,omitempty"`
}

// Analyze scans every warehouse for products under the low-stock
// threshold and recommends a fixed restock quantity, prioritized high
// when stock is critically low.
func Analyze(snapshot model.StateSnapshot) Report {
	rep := Report{
		Timestamp:       time.Now(),
		TotalWarehouses: len(snapshot.Warehouses),
		Metrics:         snapshot.Metrics,
	}
	for _, w := range snapshot.Warehouses {
		wa := WarehouseAnalysis{
			WarehouseID:  w.ID,
			Name:         w.Name,
			CurrentStock: w.Inventory,
			Status:       "normal",
		}
		for product, qty := range w.Inventory {
			if qty >= lowStockThreshold {
				continue
			}
			wa.LowStockItems = append(wa.LowStockItems, product)
			priority := "medium"
			if qty < highPriorityThreshold {
				priority = "high"
			}
			rep.Restock = append(rep.Restock, RestockRecommendation{
				Warehouse:          w.Name,
				Product:            product,
				CurrentStock:       qty,
				RecommendedRestock: restockQuantity,
				Priority:           priority,
			})
		}
		if len(wa.LowStockItems) > 0 {
			wa.Status = "needs_restock"
			rep.WarehousesNeedingStock++
		}
		rep.Warehouses = append(rep.Warehouses, wa)
	}

	rep.Fleet.TotalTrucks = len(snapshot.Trucks)
	var effSum float64
	for _, t := range snapshot.Trucks {
		effSum += t.Efficiency
		if !t.Idle() {
			rep.Fleet.ActiveTrucks++
		}
	}
	rep.Fleet.IdleTrucks = rep.Fleet.TotalTrucks - rep.Fleet.ActiveTrucks
	if rep.Fleet.TotalTrucks > 0 {
		rep.Fleet.AverageEfficiency = effSum / float64(rep.Fleet.TotalTrucks)
	}
	return rep
}
