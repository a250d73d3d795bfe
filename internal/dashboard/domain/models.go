// Package domain defines the read-side dashboard contract. The dashboard
// composes the individual analytics reports over one cached dataset pull.
package domain

import (
	"context"
	"time"

	inventorydomain "github.com/smallbiznis/vendhub/internal/inventory/domain"
	moversdomain "github.com/smallbiznis/vendhub/internal/movers/domain"
	pipelinedomain "github.com/smallbiznis/vendhub/internal/pipeline/domain"
	routeopsdomain "github.com/smallbiznis/vendhub/internal/routeops/domain"
	stockoutdomain "github.com/smallbiznis/vendhub/internal/stockout/domain"
)

// Overview is the headline rollup across every report.
type Overview struct {
	WindowDays   int   `json:"window_days"`
	RevenueCents int64 `json:"revenue_cents"`
	Transactions int   `json:"transactions"`

	ItemsTracked    int `json:"items_tracked"`
	ItemsOutOfStock int `json:"items_out_of_stock"`
	ItemsToReorder  int `json:"items_to_reorder"`

	StockoutCandidates int `json:"stockout_candidates"`

	TopGainers   []moversdomain.Entry `json:"top_gainers"`
	TopDecliners []moversdomain.Entry `json:"top_decliners"`

	RouteRuns               int     `json:"route_runs"`
	RevenueCentsPerRouteHr  float64 `json:"revenue_cents_per_route_hour"`
	ActiveProspects         int     `json:"active_prospects"`
	PipelineValueCents      int64   `json:"pipeline_value_cents"`
	PipelineConversionPct   float64 `json:"pipeline_conversion_pct"`
	StalledProspects        int     `json:"stalled_prospects"`

	DataFetchedAt time.Time `json:"data_fetched_at"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// MoversQuery selects the mover dimension and windows.
type MoversQuery struct {
	GroupBy    moversdomain.GroupBy
	WindowDays int
	TopN       int
}

// Service serves dashboard reports from a cached dataset. A report older
// than the cache TTL triggers a fresh provider pull.
type Service interface {
	Overview(ctx context.Context) (Overview, error)
	Inventory(ctx context.Context) (inventorydomain.Report, error)
	Stockouts(ctx context.Context) (stockoutdomain.Report, error)
	Movers(ctx context.Context, q MoversQuery) (moversdomain.Report, error)
	Routes(ctx context.Context, topN int) (routeopsdomain.Report, error)
	Pipeline(ctx context.Context) (pipelinedomain.KPISet, error)

	// Refresh re-pulls the dataset regardless of cache freshness.
	Refresh(ctx context.Context) error
}
