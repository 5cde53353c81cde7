// Package planner turns pickup and delivery requests into an ordered
// waypoint sequence with distance, time and efficiency metrics.
package planner

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/fleetgrid/supplyline/core/geo"
	"github.com/fleetgrid/supplyline/core/model"
)

// averageSpeedMPH is the assumed road speed for duration estimates.
const averageSpeedMPH = 45.0

// DeliveryRequest is a caller-supplied delivery destination.
type DeliveryRequest struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Quantity int     `json:"quantity"`
	Priority string  `json:"priority,omitempty"`
}

// Plan builds a route visiting one pickup waypoint per source warehouse
// followed by one delivery waypoint per request, both in caller order.
// No reordering for optimality is attempted: total distance is the sum
// of consecutive great-circle legs along this fixed order.
func Plan(sources []model.Warehouse, deliveries []DeliveryRequest) (model.Route, error) {
	if len(deliveries) == 0 {
		return model.Route{}, model.NewValidationError("no delivery requests provided")
	}
	for _, w := range sources {
		if w.Lat == 0 && w.Lng == 0 {
			return model.Route{}, model.NewValidationError("warehouse %q has no coordinates", w.Name)
		}
	}
	for _, d := range deliveries {
		if d.Lat == 0 && d.Lng == 0 {
			return model.Route{}, model.NewValidationError("delivery %q has no coordinates", d.Name)
		}
	}

	waypoints := make([]model.Waypoint, 0, len(sources)+len(deliveries))
	for _, w := range sources {
		waypoints = append(waypoints, model.Waypoint{
			Lat:    w.Lat,
			Lng:    w.Lng,
			Kind:   model.WaypointPickup,
			Label:  w.Name,
			Action: fmt.Sprintf("Pickup inventory from %s", w.Name),
		})
	}
	for _, d := range deliveries {
		action := fmt.Sprintf("Deliver items to %s", d.Name)
		if d.Quantity > 0 {
			action = fmt.Sprintf("Deliver %d units to %s", d.Quantity, d.Name)
		}
		waypoints = append(waypoints, model.Waypoint{
			Lat:    d.Lat,
			Lng:    d.Lng,
			Kind:   model.WaypointDelivery,
			Label:  d.Name,
			Action: action,
		})
	}

	distance := 0.0
	for i := 0; i < len(waypoints)-1; i++ {
		distance += geo.Distance(waypoints[i].Lat, waypoints[i].Lng, waypoints[i+1].Lat, waypoints[i+1].Lng)
	}

	priority := model.PriorityMedium
	if len(deliveries) > 3 {
		priority = model.PriorityHigh
	}

	return model.Route{
		ID:            "route_" + uuid.NewString(),
		Name:          fmt.Sprintf("Optimized Route - %d stops", len(waypoints)),
		Waypoints:     waypoints,
		DistanceMiles: distance,
		EstimatedTime: formatDuration(distance / averageSpeedMPH),
		Efficiency:    efficiencyScore(distance),
		Priority:      priority,
	}, nil
}

// efficiencyScore is a distance-penalized display heuristic clamped to
// the [85,99] band.
func efficiencyScore(distance float64) float64 {
	return math.Max(85, math.Min(99, 100-distance/10))
}

// formatDuration renders fractional hours as "Nh Mm".
func formatDuration(hours float64) string {
	h := int(hours)
	m := int(math.Mod(hours, 1) * 60)
	return fmt.Sprintf("%dh %dm", h, m)
}
