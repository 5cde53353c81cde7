package model

import "fmt"

// TruckStatus describes the operational state of a truck.
type TruckStatus string

const (
	StatusIdle      TruckStatus = "idle"
	StatusEnRoute   TruckStatus = "en-route"
	StatusLoading   TruckStatus = "loading"
	StatusCompleted TruckStatus = "completed"
)

// Truck is a fleet vehicle. A truck is idle exactly when its route is
// empty; dispatching assigns the route and moves it to en-route.
type Truck struct {
	ID          string      `json:"id"`
	Driver      string      `json:"driver"`
	Capacity    int         `json:"capacity"`
	CurrentLoad int         `json:"current_load"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Status      TruckStatus `json:"status"`
	Route       []Waypoint  `json:"route"`
	// Efficiency is a static quality score in [0,100] used by the
	// dispatch selector.
	Efficiency float64 `json:"efficiency"`
	// FuelSaved and CO2Reduced only ever grow; the telemetry loop
	// increments them while the truck is en-route.
	FuelSaved      float64 `json:"fuel_saved"`
	CO2Reduced     float64 `json:"co2_reduced"`
	CompletedStops int     `json:"completed_stops"`
	TotalStops     int     `json:"total_stops"`
}

// Validate checks that the truck configuration is sound.
func (t Truck) Validate() error {
	if t.Capacity <= 0 {
		return fmt.Errorf("truck capacity must be positive")
	}
	if t.Efficiency < 0 || t.Efficiency > 100 {
		return fmt.Errorf("truck efficiency must be in [0,100]")
	}
	if t.CurrentLoad > t.Capacity {
		return fmt.Errorf("truck load %d exceeds capacity %d", t.CurrentLoad, t.Capacity)
	}
	return nil
}

// Idle reports whether the truck can accept a dispatch.
func (t Truck) Idle() bool { return t.Status == StatusIdle }

// Clone returns a deep copy including the assigned route.
func (t Truck) Clone() Truck {
	cp := t
	cp.Route = make([]Waypoint, len(t.Route))
	copy(cp.Route, t.Route)
	return cp
}

// TruckTelemetry is the per-truck subset broadcast on every telemetry tick.
type TruckTelemetry struct {
	ID         string      `json:"id"`
	Lat        float64     `json:"lat"`
	Lng        float64     `json:"lng"`
	Status     TruckStatus `json:"status"`
	FuelSaved  float64     `json:"fuel_saved"`
	CO2Reduced float64     `json:"co2_reduced"`
}

// Telemetry extracts the broadcast subset from a truck.
func (t Truck) Telemetry() TruckTelemetry {
	return TruckTelemetry{
		ID:         t.ID,
		Lat:        t.Lat,
		Lng:        t.Lng,
		Status:     t.Status,
		FuelSaved:  t.FuelSaved,
		CO2Reduced: t.CO2Reduced,
	}
}
