package config

import (
	"fmt"

	"github.com/fleetgrid/supplyline/core/model"
)

// SeedConfig holds the initial fleet state and the demand history the
// forecaster trains on. When empty, DefaultSeed is used.
type SeedConfig struct {
	Warehouses []model.Warehouse           `json:"warehouses"`
	Trucks     []model.Truck               `json:"trucks"`
	Demand     map[string]map[string][]int `json:"demand"`
}

// SetDefaults fills the seed with the built-in Texas network when no
// warehouses are configured.
func (c *SeedConfig) SetDefaults() {
	if len(c.Warehouses) == 0 && len(c.Trucks) == 0 {
		*c = DefaultSeed()
	}
}

// Validate checks referential sanity of the configured seed.
func (c SeedConfig) Validate() error {
	seen := make(map[int]bool, len(c.Warehouses))
	for _, w := range c.Warehouses {
		if w.ID <= 0 {
			return fmt.Errorf("seed: warehouse %q has invalid id %d", w.Name, w.ID)
		}
		if seen[w.ID] {
			return fmt.Errorf("seed: duplicate warehouse id %d", w.ID)
		}
		seen[w.ID] = true
	}
	ids := make(map[string]bool, len(c.Trucks))
	for _, tr := range c.Trucks {
		if err := tr.Validate(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if ids[tr.ID] {
			return fmt.Errorf("seed: duplicate truck id %s", tr.ID)
		}
		ids[tr.ID] = true
	}
	return nil
}

// DefaultSeed returns the built-in demo network: three main
// distribution centers, two hubs and four idle trucks around the
// Dallas metro, plus five days of demand history per region.
func DefaultSeed() SeedConfig {
	return SeedConfig{
		Warehouses: []model.Warehouse{
			{
				ID: 1, Name: "Dallas DC", Lat: 32.7767, Lng: -96.7970,
				Role: model.RoleMain, Capacity: 2000,
				Inventory: map[string]int{"cereal": 1250, "milk": 890, "juice": 650, "bread": 420},
			},
			{
				ID: 2, Name: "Houston DC", Lat: 29.7604, Lng: -95.3698,
				Role: model.RoleMain, Capacity: 2000,
				Inventory: map[string]int{"cereal": 890, "milk": 1100, "juice": 300, "bread": 380},
			},
			{
				ID: 3, Name: "Austin DC", Lat: 30.2672, Lng: -97.7431,
				Role: model.RoleMain, Capacity: 1500,
				Inventory: map[string]int{"cereal": 650, "milk": 480, "juice": 720, "bread": 290},
			},
			{
				ID: 4, Name: "Fort Worth Hub", Lat: 32.7555, Lng: -97.3308,
				Role: model.RolePickup, Capacity: 800,
				Inventory: map[string]int{"cereal": 320, "milk": 240, "juice": 180, "bread": 150},
			},
			{
				ID: 5, Name: "San Antonio Hub", Lat: 29.4241, Lng: -98.4936,
				Role: model.RoleDelivery, Capacity: 600,
				Inventory: map[string]int{"cereal": 180, "milk": 160, "juice": 140, "bread": 120},
			},
		},
		Trucks: []model.Truck{
			{ID: "T001", Driver: "John Smith", Capacity: 100, Lat: 32.7767, Lng: -96.7970, Status: model.StatusIdle, Efficiency: 98.5},
			{ID: "T002", Driver: "Sarah Johnson", Capacity: 120, Lat: 29.7604, Lng: -95.3698, Status: model.StatusIdle, Efficiency: 97.2},
			{ID: "T003", Driver: "Mike Wilson", Capacity: 110, Lat: 30.2672, Lng: -97.7431, Status: model.StatusIdle, Efficiency: 96.8},
			{ID: "T004", Driver: "Lisa Brown", Capacity: 95, Lat: 32.7555, Lng: -97.3308, Status: model.StatusIdle, Efficiency: 98.0},
		},
		Demand: map[string]map[string][]int{
			"Dallas": {
				"cereal": {120, 140, 160, 180, 200},
				"milk":   {200, 220, 240, 260, 280},
				"juice":  {80, 90, 100, 110, 120},
				"bread":  {150, 160, 170, 180, 190},
			},
			"Houston": {
				"cereal": {100, 110, 120, 130, 140},
				"milk":   {180, 190, 200, 210, 220},
				"juice":  {70, 75, 80, 85, 90},
				"bread":  {140, 145, 150, 155, 160},
			},
			"Austin": {
				"cereal": {80, 85, 90, 95, 100},
				"milk":   {120, 125, 130, 135, 140},
				"juice":  {90, 95, 100, 105, 110},
				"bread":  {100, 105, 110, 115, 120},
			},
		},
	}
}
