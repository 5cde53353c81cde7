// Package history defines persistent dispatch-log records and the store
// interface. Backends live in infra/history.
package history

import (
	"context"
	"time"
)

// LogRecord captures one dispatch decision.
type LogRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	RouteID       string    `json:"route_id"`
	RouteName     string    `json:"route_name"`
	TruckID       string    `json:"truck_id"`
	Driver        string    `json:"driver"`
	Stops         int       `json:"stops"`
	DistanceMiles float64   `json:"distance_miles"`
	Efficiency    float64   `json:"efficiency"`
	Emergency     bool      `json:"emergency"`
	Product       string    `json:"product,omitempty"`
}

// LogQuery defines filters for retrieving records. Zero values match
// everything.
type LogQuery struct {
	Start   time.Time
	End     time.Time
	TruckID string
}

// Matches reports whether the record passes the query filters.
func (q LogQuery) Matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.TruckID != "" && r.TruckID != q.TruckID {
		return false
	}
	return true
}

// Store persists dispatch log records.
type Store interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
