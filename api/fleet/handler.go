// Package fleet exposes the fleet engine over HTTP.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/fleetgrid/supplyline/core/analysis"
	"github.com/fleetgrid/supplyline/core/dispatch"
	"github.com/fleetgrid/supplyline/core/emergency"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/planner"
)

// Service is the engine surface the handlers consume.
type Service interface {
	GetState() model.StateSnapshot
	PlanRoute(ctx context.Context, originID int, deliveries []planner.DeliveryRequest) (model.Route, error)
	Dispatch(ctx context.Context, route model.Route) (dispatch.Assignment, error)
	Forecast(ctx context.Context, region string, horizonDays int) (model.RegionForecast, error)
	ResolveEmergency(ctx context.Context, warehouseID int, product string, criticalLevel int) (emergency.Plan, error)
	Analyze(ctx context.Context) (analysis.Report, error)
}

// Register mounts all fleet routes on the mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("/health", handleHealth())
	mux.Handle("/api/status", handleStatus(svc))
	mux.Handle("/api/warehouses", handleWarehouses(svc))
	mux.Handle("/api/trucks", handleTrucks(svc))
	mux.Handle("/api/metrics", handleMetrics(svc))
	mux.Handle("/api/optimize-route", handleOptimizeRoute(svc))
	mux.Handle("/api/dispatch", handleDispatch(svc))
	mux.Handle("/api/forecast-demand", handleForecast(svc))
	mux.Handle("/api/emergency-restock", handleEmergencyRestock(svc))
	mux.Handle("/api/analyze", handleAnalyze(svc))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		valErr    *model.ValidationError
		nfErr     *model.NotFoundError
		capErr    *model.NoCapacityError
		regionErr *model.UnknownRegionError
	)
	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	case errors.As(err, &nfErr), errors.As(err, &regionErr):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": err.Error()})
	case errors.As(err, &capErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"success":        false,
			"error":          err.Error(),
			"recommendation": capErr.Recommendation,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
	}
}

func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"system":    "supplyline",
		})
	})
}

func handleStatus(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := svc.GetState()
		totalInventory := 0
		for _, wh := range snap.Warehouses {
			totalInventory += wh.TotalInventory()
		}
		active := 0
		var effSum float64
		for _, t := range snap.Trucks {
			if !t.Idle() {
				active++
			}
			effSum += t.Efficiency
		}
		avgEff := 0.0
		if len(snap.Trucks) > 0 {
			avgEff = effSum / float64(len(snap.Trucks))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"timestamp":     time.Now().Format(time.RFC3339),
			"system_status": "operational",
			"warehouses": map[string]any{
				"total":           len(snap.Warehouses),
				"total_inventory": totalInventory,
				"details":         snap.Warehouses,
			},
			"fleet": map[string]any{
				"total_trucks":       len(snap.Trucks),
				"active_trucks":      active,
				"idle_trucks":        len(snap.Trucks) - active,
				"average_efficiency": round1(avgEff),
				"details":            snap.Trucks,
			},
			"performance_metrics": snap.Metrics,
		})
	})
}

func handleWarehouses(svc Service) http.Handler {
	type warehouseView struct {
		model.Warehouse
		Utilization float64 `json:"utilization"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := svc.GetState()
		views := make([]warehouseView, 0, len(snap.Warehouses))
		for _, wh := range snap.Warehouses {
			views = append(views, warehouseView{Warehouse: wh, Utilization: wh.Utilization()})
		}
		writeJSON(w, http.StatusOK, map[string]any{"warehouses": views})
	})
}

func handleTrucks(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trucks": svc.GetState().Trucks})
	})
}

func handleMetrics(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := svc.GetState()
		totalInventory, totalCapacity := 0, 0
		for _, wh := range snap.Warehouses {
			totalInventory += wh.TotalInventory()
			totalCapacity += wh.Capacity
		}
		active := 0
		var fuel, co2, effSum float64
		for _, t := range snap.Trucks {
			if !t.Idle() {
				active++
			}
			fuel += t.FuelSaved
			co2 += t.CO2Reduced
			effSum += t.Efficiency
		}
		avgEff, fleetUtil := 0.0, 0.0
		if n := len(snap.Trucks); n > 0 {
			avgEff = effSum / float64(n)
			fleetUtil = float64(active) / float64(n) * 100
		}
		warehouseUtil := 0.0
		if totalCapacity > 0 {
			warehouseUtil = float64(totalInventory) / float64(totalCapacity) * 100
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total_distance":        snap.Metrics.TotalDistanceSaved,
			"fuel_saved":            fuel,
			"co2_reduced":           co2,
			"efficiency":            round1(avgEff),
			"active_routes":         active,
			"total_inventory":       totalInventory,
			"warehouse_utilization": round1(warehouseUtil),
			"fleet_utilization":     round1(fleetUtil),
			"timestamp":             time.Now().Format(time.RFC3339),
		})
	})
}

func handleOptimizeRoute(svc Service) http.Handler {
	type request struct {
		OriginWarehouseID int                       `json:"origin_warehouse_id"`
		Deliveries        []planner.DeliveryRequest `json:"destination_requests"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		route, err := svc.PlanRoute(r.Context(), req.OriginWarehouseID, req.Deliveries)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"route":   route,
			"recommendations": []string{
				fmt.Sprintf("Route optimized for %d stops", len(route.Waypoints)),
				fmt.Sprintf("Estimated fuel savings: %.1f%%", route.Efficiency-85),
				fmt.Sprintf("Total distance: %.1f miles", route.DistanceMiles),
			},
		})
	})
}

func handleDispatch(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var route model.Route
		if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		assignment, err := svc.Dispatch(r.Context(), route)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "dispatch": assignment})
	})
}

func handleForecast(svc Service) http.Handler {
	type request struct {
		Region    string `json:"region"`
		DaysAhead int    `json:"days_ahead"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := request{DaysAhead: 7}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		fc, err := svc.Forecast(r.Context(), req.Region, req.DaysAhead)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "forecast": fc})
	})
}

func handleEmergencyRestock(svc Service) http.Handler {
	type request struct {
		WarehouseID   int    `json:"warehouse_id"`
		Product       string `json:"product"`
		CriticalLevel int    `json:"critical_level"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := svc.ResolveEmergency(r.Context(), req.WarehouseID, req.Product, req.CriticalLevel)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": plan})
	})
}

func handleAnalyze(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rep, err := svc.Analyze(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": rep})
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
