package model

// Trend labels the direction of a short-window demand projection.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// ProductForecast is the projection for a single product.
type ProductForecast struct {
	PredictedDemand int     `json:"predicted_demand"`
	Confidence      float64 `json:"confidence"`
	Trend           Trend   `json:"trend"`
}

// RegionForecast aggregates product forecasts for one region. Derived
// data, never persisted.
type RegionForecast struct {
	Region         string                     `json:"region"`
	HorizonDays    int                        `json:"time_horizon_days"`
	Products       map[string]ProductForecast `json:"forecasts"`
	TotalPredicted int                        `json:"total_predicted_demand"`
	Narrative      string                     `json:"narrative,omitempty"`
}

// PerformanceMetrics are the process-wide aggregate counters. Written
// by the dispatch selector and the telemetry loop, read by every
// external-facing query.
type PerformanceMetrics struct {
	TotalDistanceSaved float64 `json:"total_distance_saved"`
	FuelSaved          float64 `json:"fuel_saved"`
	CO2Reduced         float64 `json:"co2_reduced"`
	EfficiencyScore    float64 `json:"efficiency_score"`
	ActiveRoutes       int     `json:"active_routes"`
}

// StateSnapshot is the full synchronous view returned by GetState.
type StateSnapshot struct {
	Warehouses []Warehouse        `json:"warehouses"`
	Trucks     []Truck            `json:"trucks"`
	Metrics    PerformanceMetrics `json:"performance_metrics"`
}
