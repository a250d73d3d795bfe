// Package domain defines the route and driver efficiency contract.
package domain

import (
	"time"

	"github.com/smallbiznis/vendhub/internal/record"
)

// RouteMetric aggregates every run of one route in the window.
type RouteMetric struct {
	RouteName string `json:"route_name"`

	Runs          int     `json:"runs"`
	RevenueCents  int64   `json:"revenue_cents"`
	Miles         float64 `json:"miles"`
	Stops         int     `json:"stops"`
	DurationHours float64 `json:"duration_hours"`

	AvgRevenueCents int64 `json:"avg_revenue_cents"`
	// EfficiencyCentsPerHour is revenue per active hour; zero when no
	// run recorded a duration.
	EfficiencyCentsPerHour float64 `json:"efficiency_cents_per_hour"`
}

// DriverMetric aggregates every run of one driver in the window.
type DriverMetric struct {
	DriverName string `json:"driver_name"`

	Runs          int     `json:"runs"`
	RevenueCents  int64   `json:"revenue_cents"`
	Miles         float64 `json:"miles"`
	Stops         int     `json:"stops"`
	DurationHours float64 `json:"duration_hours"`

	AvgRevenueCents        int64   `json:"avg_revenue_cents"`
	EfficiencyCentsPerHour float64 `json:"efficiency_cents_per_hour"`
}

// Efficiency holds the fleet-wide per-hour ratios.
type Efficiency struct {
	MilesPerHour        float64 `json:"miles_per_hour"`
	RevenueCentsPerHour float64 `json:"revenue_cents_per_hour"`
	StopsPerHour        float64 `json:"stops_per_hour"`
}

// Report is the full route efficiency rollup. Degenerate input (no runs)
// yields the zero report with empty, non-nil lists.
type Report struct {
	TotalRuns          int     `json:"total_runs"`
	TotalRevenueCents  int64   `json:"total_revenue_cents"`
	TotalMiles         float64 `json:"total_miles"`
	TotalStops         int     `json:"total_stops"`
	TotalDurationHours float64 `json:"total_duration_hours"`

	Efficiency Efficiency `json:"efficiency"`

	TopRoutes  []RouteMetric  `json:"top_routes"`  // by efficiency descending
	TopDrivers []DriverMetric `json:"top_drivers"` // by efficiency descending

	GeneratedAt time.Time `json:"generated_at"`
}

// AggregateInput joins runs, their stops, and same-window sales.
//
// Revenue attribution is machine-day grained: a run earns the full day's
// revenue of every machine it visited. Two runs visiting the same machine
// on the same day both count that revenue; this mirrors how field teams
// read the numbers and is intentionally not deduplicated.
type AggregateInput struct {
	Runs  []record.RouteRun
	Stops []record.RouteStop
	Sales []record.SaleRecord

	TopN int
}

// Service computes route and driver efficiency rankings.
type Service interface {
	Aggregate(input AggregateInput, now time.Time) Report
}
