// Package record defines the typed operational records the analytics engines
// consume, plus the normalization layer that turns loosely typed upstream
// rows into them. Everything downstream of this package can assume numeric
// fields are non-negative and string fields are populated.
package record

import "time"

// UnknownValue is the sentinel for string fields the upstream data source
// left empty.
const UnknownValue = "unknown"

// DaysOfSupplyInfinite marks a snapshot whose supply is effectively
// unlimited (no measurable sales velocity).
const DaysOfSupplyInfinite = 999

// SaleRecord is one point-of-sale transaction.
type SaleRecord struct {
	MachineID      string    `json:"machine_id"`
	ProductID      string    `json:"product_id"`
	OccurredAt     time.Time `json:"occurred_at"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitCostCents  int64     `json:"unit_cost_cents"`
}

// RevenueCents is quantity times unit price.
func (s SaleRecord) RevenueCents() int64 {
	return s.Quantity * s.UnitPriceCents
}

// Dated reports whether the record carries a usable timestamp. Records
// without one stay in date-agnostic totals but are excluded from day-bucketed
// series.
func (s SaleRecord) Dated() bool {
	return !s.OccurredAt.IsZero()
}

// InventorySnapshot is the current state of one machine/product/slot triple.
// ParLevel and ReorderPoint are only comparable within the same triple.
type InventorySnapshot struct {
	MachineID     string  `json:"machine_id"`
	ProductID     string  `json:"product_id"`
	SlotID        string  `json:"slot_id"`
	CurrentQty    int64   `json:"current_qty"`
	ParLevel      int64   `json:"par_level"`
	ReorderPoint  int64   `json:"reorder_point"`
	SalesVelocity float64 `json:"sales_velocity"`
	DaysOfSupply  float64 `json:"days_of_supply"`
}

// RouteRun is one execution of a service route by a driver.
type RouteRun struct {
	ID         string     `json:"id"`
	RouteName  string     `json:"route_name"`
	DriverName string     `json:"driver_name"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// DurationHours is the run length in hours, zero when either timestamp is
// missing or the range is inverted.
func (r RouteRun) DurationHours() float64 {
	if r.StartedAt.IsZero() || r.FinishedAt == nil || r.FinishedAt.IsZero() {
		return 0
	}
	hours := r.FinishedAt.Sub(r.StartedAt).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// RouteStop is one machine visit within a run.
type RouteStop struct {
	RunID          string  `json:"run_id"`
	MachineID      string  `json:"machine_id"`
	Miles          float64 `json:"miles"`
	ServiceMinutes float64 `json:"service_minutes"`
}

// ProspectRecord is one sales pipeline entry.
type ProspectRecord struct {
	ID                  string     `json:"id"`
	Stage               Stage      `json:"stage"`
	CreatedAt           time.Time  `json:"created_at"`
	WonAt               *time.Time `json:"won_at,omitempty"`
	LostAt              *time.Time `json:"lost_at,omitempty"`
	NextFollowUpAt      *time.Time `json:"next_follow_up_at,omitempty"`
	EstimatedValueCents int64      `json:"estimated_value_cents"`
	Source              string     `json:"source"`
}

// NameLookup resolves entity IDs to display names supplied by the caller.
// The engine never fetches names itself.
type NameLookup map[string]string

// Resolve returns the display name for id, or the unknown sentinel.
func (l NameLookup) Resolve(id string) string {
	if l == nil {
		return UnknownValue
	}
	if name, ok := l[id]; ok && name != "" {
		return name
	}
	return UnknownValue
}
