package model

// WarehouseRole classifies a warehouse's position in the network.
type WarehouseRole string

const (
	RoleMain     WarehouseRole = "main"
	RolePickup   WarehouseRole = "pickup"
	RoleDelivery WarehouseRole = "delivery"
)

// Warehouse is a node of the logistics network holding product inventory.
type Warehouse struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	Role      WarehouseRole  `json:"type"`
	Inventory map[string]int `json:"inventory"`
	// Capacity is an upper bound on total inventory. It is a display
	// target only and is not enforced on writes.
	Capacity int `json:"capacity"`
}

// TotalInventory sums the stocked quantity across all products.
func (w Warehouse) TotalInventory() int {
	total := 0
	for _, q := range w.Inventory {
		total += q
	}
	return total
}

// Utilization returns total inventory as a percentage of capacity.
func (w Warehouse) Utilization() float64 {
	if w.Capacity <= 0 {
		return 0
	}
	return float64(w.TotalInventory()) / float64(w.Capacity) * 100
}

// Stock returns the stocked quantity of a product, zero when unknown.
func (w Warehouse) Stock(product string) int {
	return w.Inventory[product]
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (w Warehouse) Clone() Warehouse {
	cp := w
	cp.Inventory = make(map[string]int, len(w.Inventory))
	for k, v := range w.Inventory {
		cp.Inventory[k] = v
	}
	return cp
}
