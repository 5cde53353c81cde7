package model

// WaypointKind classifies a stop within a planned route.
type WaypointKind string

const (
	WaypointStart    WaypointKind = "start"
	WaypointPickup   WaypointKind = "pickup"
	WaypointDelivery WaypointKind = "delivery"
	WaypointEnd      WaypointKind = "end"
)

// Waypoint is a single stop in a planned route. Immutable once produced
// by the planner.
type Waypoint struct {
	Lat    float64      `json:"lat"`
	Lng    float64      `json:"lng"`
	Kind   WaypointKind `json:"type"`
	Label  string       `json:"name"`
	Action string       `json:"action"`
}

// RoutePriority ranks a route for dispatching.
type RoutePriority string

const (
	PriorityHigh   RoutePriority = "high"
	PriorityMedium RoutePriority = "medium"
	PriorityLow    RoutePriority = "low"
)

// Route is an ordered waypoint sequence with its display metrics.
// Traversal order equals slice order. The dispatch selector fills
// TruckID; nothing mutates a route after dispatch.
type Route struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Waypoints     []Waypoint    `json:"waypoints"`
	DistanceMiles float64       `json:"distance"`
	EstimatedTime string        `json:"estimated_time"`
	Efficiency    float64       `json:"efficiency"`
	Priority      RoutePriority `json:"priority"`
	TruckID       string        `json:"truck_id,omitempty"`
}

// Stops returns the number of waypoints.
func (r Route) Stops() int { return len(r.Waypoints) }
