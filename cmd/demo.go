package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/supplyline/app"
	"github.com/fleetgrid/supplyline/core/planner"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the demo scenarios against an in-process service",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Logging.Apply(); err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "service close: %v\n", cerr)
		}
	}()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "scenario 1: supply chain analysis")
	report, err := svc.Analyze(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %d warehouses analyzed, %d need restock\n",
		report.TotalWarehouses, report.WarehousesNeedingStock)

	fmt.Fprintln(out, "scenario 2: route optimization")
	route, err := svc.PlanRoute(ctx, 1, []planner.DeliveryRequest{
		{Name: "Plano Store", Lat: 33.0198, Lng: -96.6989, Quantity: 45, Priority: "high"},
		{Name: "Frisco Store", Lat: 33.1507, Lng: -96.8236, Quantity: 30, Priority: "medium"},
		{Name: "McKinney Store", Lat: 33.1972, Lng: -96.6397, Quantity: 25, Priority: "high"},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s: %.1f miles, %s, efficiency %.1f\n",
		route.Name, route.DistanceMiles, route.EstimatedTime, route.Efficiency)

	assignment, err := svc.Dispatch(ctx, route)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  dispatched %s (%s), completion %s\n",
		assignment.TruckID, assignment.Driver, assignment.EstimatedCompletion)

	fmt.Fprintln(out, "scenario 3: demand forecasting")
	fc, err := svc.Forecast(ctx, "Dallas", 7)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s over %d days: %d units predicted\n",
		fc.Region, fc.HorizonDays, fc.TotalPredicted)

	fmt.Fprintln(out, "scenario 4: emergency restocking")
	plan, err := svc.ResolveEmergency(ctx, 5, "milk", 15)
	if err != nil {
		return err
	}
	if plan.TruckID != "" {
		fmt.Fprintf(out, "  %s restock of %s: truck %s from %d donor candidates\n",
			plan.Warehouse, plan.Product, plan.TruckID, len(plan.Donors))
	} else {
		fmt.Fprintf(out, "  %s restock of %s: %s\n", plan.Warehouse, plan.Product, plan.Recommendation)
	}

	snap := svc.GetState()
	fmt.Fprintf(out, "final status: %d warehouses, %d trucks, %d active routes\n",
		len(snap.Warehouses), len(snap.Trucks), snap.Metrics.ActiveRoutes)
	return nil
}
