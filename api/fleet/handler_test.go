package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleetgrid/supplyline/core/analysis"
	"github.com/fleetgrid/supplyline/core/dispatch"
	"github.com/fleetgrid/supplyline/core/emergency"
	"github.com/fleetgrid/supplyline/core/model"
	"github.com/fleetgrid/supplyline/core/planner"
)

type fakeService struct {
	state        model.StateSnapshot
	planErr      error
	dispatchErr  error
	forecastErr  error
	emergencyErr error
}

func (f *fakeService) GetState() model.StateSnapshot { return f.state }

func (f *fakeService) PlanRoute(_ context.Context, originID int, deliveries []planner.DeliveryRequest) (model.Route, error) {
	if f.planErr != nil {
		return model.Route{}, f.planErr
	}
	return model.Route{
		ID:            "route_test",
		Name:          "Optimized Route - 2 stops",
		DistanceMiles: 40,
		Efficiency:    96,
		Waypoints:     make([]model.Waypoint, 1+len(deliveries)),
	}, nil
}

func (f *fakeService) Dispatch(context.Context, model.Route) (dispatch.Assignment, error) {
	if f.dispatchErr != nil {
		return dispatch.Assignment{}, f.dispatchErr
	}
	return dispatch.Assignment{TruckID: "T001", Driver: "John Smith"}, nil
}

func (f *fakeService) Forecast(_ context.Context, region string, days int) (model.RegionForecast, error) {
	if f.forecastErr != nil {
		return model.RegionForecast{}, f.forecastErr
	}
	return model.RegionForecast{Region: region, HorizonDays: days, TotalPredicted: 500}, nil
}

func (f *fakeService) ResolveEmergency(context.Context, int, string, int) (emergency.Plan, error) {
	if f.emergencyErr != nil {
		return emergency.Plan{}, f.emergencyErr
	}
	return emergency.Plan{Product: "milk", TruckID: "T001"}, nil
}

func (f *fakeService) Analyze(context.Context) (analysis.Report, error) {
	return analysis.Report{TotalWarehouses: len(f.state.Warehouses)}, nil
}

func newMux(svc Service) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, svc)
	return mux
}

func testState() model.StateSnapshot {
	return model.StateSnapshot{
		Warehouses: []model.Warehouse{
			{ID: 1, Name: "Dallas DC", Capacity: 2000, Inventory: map[string]int{"cereal": 500, "milk": 500}},
		},
		Trucks: []model.Truck{
			{ID: "T001", Status: model.StatusIdle, Efficiency: 98, FuelSaved: 1.5, CO2Reduced: 3.0},
			{ID: "T002", Status: model.StatusEnRoute, Efficiency: 96},
		},
	}
}

func TestHealth(t *testing.T) {
	mux := newMux(&fakeService{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["status"] != "healthy" {
		t.Errorf("status field = %v", out["status"])
	}
}

func TestWarehouses_Utilization(t *testing.T) {
	mux := newMux(&fakeService{state: testState()})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/warehouses", nil))
	var out struct {
		Warehouses []struct {
			Name        string  `json:"name"`
			Utilization float64 `json:"utilization"`
		} `json:"warehouses"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Warehouses) != 1 {
		t.Fatalf("warehouses = %d", len(out.Warehouses))
	}
	if out.Warehouses[0].Utilization != 50 {
		t.Errorf("utilization = %v, want 50", out.Warehouses[0].Utilization)
	}
}

func TestMetrics_Aggregates(t *testing.T) {
	mux := newMux(&fakeService{state: testState()})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/metrics", nil))
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["fleet_utilization"].(float64) != 50 {
		t.Errorf("fleet_utilization = %v", out["fleet_utilization"])
	}
	if out["efficiency"].(float64) != 97 {
		t.Errorf("efficiency = %v", out["efficiency"])
	}
	if out["fuel_saved"].(float64) != 1.5 {
		t.Errorf("fuel_saved = %v", out["fuel_saved"])
	}
}

func TestOptimizeRoute(t *testing.T) {
	mux := newMux(&fakeService{})
	body, _ := json.Marshal(map[string]any{
		"origin_warehouse_id": 1,
		"destination_requests": []map[string]any{
			{"name": "Plano Store", "lat": 33.0198, "lng": -96.6989, "quantity": 50},
		},
	})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/optimize-route", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Success         bool     `json:"success"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Success || len(out.Recommendations) != 3 {
		t.Fatalf("response = %+v", out)
	}
}

func TestOptimizeRoute_ValidationError(t *testing.T) {
	mux := newMux(&fakeService{planErr: model.NewValidationError("no delivery requests provided")})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/optimize-route", bytes.NewReader([]byte(`{}`))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDispatch_NoCapacity(t *testing.T) {
	mux := newMux(&fakeService{dispatchErr: &model.NoCapacityError{Recommendation: "wait_for_truck_availability"}})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/dispatch", bytes.NewReader([]byte(`{}`))))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["recommendation"] != "wait_for_truck_availability" {
		t.Errorf("recommendation = %v", out["recommendation"])
	}
}

func TestForecast_UnknownRegion(t *testing.T) {
	mux := newMux(&fakeService{forecastErr: &model.UnknownRegionError{Region: "Tulsa"}})
	rr := httptest.NewRecorder()
	body := []byte(`{"region":"Tulsa"}`)
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/forecast-demand", bytes.NewReader(body)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEmergencyRestock(t *testing.T) {
	mux := newMux(&fakeService{})
	body := []byte(`{"warehouse_id":5,"product":"milk","critical_level":15}`)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/api/emergency-restock", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newMux(&fakeService{state: testState()})
	for _, path := range []string{"/api/status", "/api/warehouses", "/api/trucks", "/api/metrics"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest("POST", path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", path, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/api/analyze", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("analyze: expected 405, got %d", rr.Code)
	}
}
