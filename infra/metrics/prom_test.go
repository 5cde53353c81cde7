package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/model"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatal(err)
	}

	if err := sink.RecordDispatch(coremetrics.DispatchEvent{
		TruckID: "T001", RouteID: "route_1", Stops: 3, DistanceMiles: 42, Efficiency: 95.8, Time: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := sink.RecordTick(coremetrics.TickEvent{
		EnRouteTrucks: 1,
		Subscribers:   2,
		Metrics:       model.PerformanceMetrics{ActiveRoutes: 1, EfficiencyScore: 96.8, FuelSaved: 12.5, CO2Reduced: 34},
		Time:          time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.efficiency); got != 96.8 {
		t.Fatalf("efficiency gauge = %f, want 96.8", got)
	}
	if got := testutil.ToFloat64(ps.enRoute); got != 1 {
		t.Fatalf("en-route gauge = %f, want 1", got)
	}
	if got := testutil.ToFloat64(ps.ticks); got != 1 {
		t.Fatalf("tick counter = %f, want 1", got)
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatal(err)
	}
	// Registering again on the same registry must not fail.
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
}

func TestMultiSinkForwards(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatal(err)
	}
	multi := NewMultiSink(coremetrics.NopSink{}, prom)
	if err := multi.RecordDispatch(coremetrics.DispatchEvent{TruckID: "T002"}); err != nil {
		t.Fatal(err)
	}
	if err := multi.RecordForecast(coremetrics.ForecastEvent{Region: "Dallas", Products: 4}); err != nil {
		t.Fatal(err)
	}
}
