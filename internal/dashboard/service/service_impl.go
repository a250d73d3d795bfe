package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/vendhub/internal/clock"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/dashboard/domain"
	datasourcedomain "github.com/smallbiznis/vendhub/internal/datasource/domain"
	inventorydomain "github.com/smallbiznis/vendhub/internal/inventory/domain"
	moversdomain "github.com/smallbiznis/vendhub/internal/movers/domain"
	"github.com/smallbiznis/vendhub/internal/observability/metrics"
	pipelinedomain "github.com/smallbiznis/vendhub/internal/pipeline/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	routeopsdomain "github.com/smallbiznis/vendhub/internal/routeops/domain"
	stockoutdomain "github.com/smallbiznis/vendhub/internal/stockout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// dataset is one provider pull mapped into typed records.
type dataset struct {
	sales     []record.SaleRecord
	snapshots []record.InventorySnapshot
	runs      []record.RouteRun
	stops     []record.RouteStop
	prospects []record.ProspectRecord

	machineNames record.NameLookup
	productNames record.NameLookup

	fetchedAt time.Time
}

type Service struct {
	log     *zap.Logger
	cfg     config.ReportsConfig
	clock   clock.Clock
	metrics *metrics.ReportMetrics

	provider  datasourcedomain.Provider
	inventory inventorydomain.Service
	stockout  stockoutdomain.Service
	movers    moversdomain.Service
	routes    routeopsdomain.Service
	pipeline  pipelinedomain.Service

	mu     sync.Mutex
	cached *dataset
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Clock   clock.Clock
	Metrics *metrics.ReportMetrics

	Provider  datasourcedomain.Provider
	Inventory inventorydomain.Service
	Stockout  stockoutdomain.Service
	Movers    moversdomain.Service
	Routes    routeopsdomain.Service
	Pipeline  pipelinedomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:       p.Log.Named("dashboard.service"),
		cfg:       p.Cfg.Reports,
		clock:     p.Clock,
		metrics:   p.Metrics,
		provider:  p.Provider,
		inventory: p.Inventory,
		stockout:  p.Stockout,
		movers:    p.Movers,
		routes:    p.Routes,
		pipeline:  p.Pipeline,
	}
}

func (s *Service) Overview(ctx context.Context) (domain.Overview, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportOverview)
		return domain.Overview{}, err
	}
	now := s.clock.Now()

	current, previous := splitWindows(ds.sales, now, s.cfg.MoverWindowDays)

	var revenueCents int64
	for _, sale := range current {
		revenueCents += sale.RevenueCents()
	}

	inv := s.inventory.Assess(inventorydomain.AssessInput{
		Snapshots:    ds.snapshots,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, now)
	so := s.stockout.Detect(stockoutdomain.DetectInput{
		Sales:        ds.sales,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, now)
	mv := s.movers.Analyze(moversdomain.AnalyzeInput{
		Current:      current,
		Previous:     previous,
		GroupBy:      moversdomain.GroupByMachine,
		WindowDays:   s.cfg.MoverWindowDays,
		TopN:         s.cfg.TopN,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, now)
	rt := s.routes.Aggregate(routeopsdomain.AggregateInput{
		Runs:  ds.runs,
		Stops: ds.stops,
		Sales: ds.sales,
		TopN:  s.cfg.TopN,
	}, now)
	pl := s.pipeline.Calculate(pipelinedomain.CalculateInput{Prospects: ds.prospects}, now)

	overview := domain.Overview{
		WindowDays:   s.cfg.MoverWindowDays,
		RevenueCents: revenueCents,
		Transactions: len(current),

		ItemsTracked:    inv.TotalItems,
		ItemsOutOfStock: inv.OutCount,
		ItemsToReorder:  inv.ReorderCount,

		StockoutCandidates: len(so.Candidates),

		TopGainers:   mv.Gainers,
		TopDecliners: mv.Decliners,

		RouteRuns:              rt.TotalRuns,
		RevenueCentsPerRouteHr: rt.Efficiency.RevenueCentsPerHour,

		ActiveProspects:       pl.Active,
		PipelineValueCents:    pl.PipelineValueCents,
		PipelineConversionPct: pl.ConversionRatePct,
		StalledProspects:      pl.Stalled,

		DataFetchedAt: ds.fetchedAt,
		GeneratedAt:   now,
	}
	s.metrics.ObserveReportBuild(metrics.ReportOverview, time.Since(started))
	return overview, nil
}

func (s *Service) Inventory(ctx context.Context) (inventorydomain.Report, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportInventory)
		return inventorydomain.Report{}, err
	}
	report := s.inventory.Assess(inventorydomain.AssessInput{
		Snapshots:    ds.snapshots,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, s.clock.Now())
	s.metrics.ObserveReportBuild(metrics.ReportInventory, time.Since(started))
	return report, nil
}

func (s *Service) Stockouts(ctx context.Context) (stockoutdomain.Report, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportStockouts)
		return stockoutdomain.Report{}, err
	}
	report := s.stockout.Detect(stockoutdomain.DetectInput{
		Sales:        ds.sales,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, s.clock.Now())
	s.metrics.ObserveReportBuild(metrics.ReportStockouts, time.Since(started))
	return report, nil
}

func (s *Service) Movers(ctx context.Context, q domain.MoversQuery) (moversdomain.Report, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportMovers)
		return moversdomain.Report{}, err
	}
	now := s.clock.Now()

	windowDays := q.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.MoverWindowDays
	}
	current, previous := splitWindows(ds.sales, now, windowDays)

	report := s.movers.Analyze(moversdomain.AnalyzeInput{
		Current:      current,
		Previous:     previous,
		GroupBy:      q.GroupBy,
		WindowDays:   windowDays,
		TopN:         q.TopN,
		MachineNames: ds.machineNames,
		ProductNames: ds.productNames,
	}, now)
	s.metrics.ObserveReportBuild(metrics.ReportMovers, time.Since(started))
	return report, nil
}

func (s *Service) Routes(ctx context.Context, topN int) (routeopsdomain.Report, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportRoutes)
		return routeopsdomain.Report{}, err
	}
	report := s.routes.Aggregate(routeopsdomain.AggregateInput{
		Runs:  ds.runs,
		Stops: ds.stops,
		Sales: ds.sales,
		TopN:  topN,
	}, s.clock.Now())
	s.metrics.ObserveReportBuild(metrics.ReportRoutes, time.Since(started))
	return report, nil
}

func (s *Service) Pipeline(ctx context.Context) (pipelinedomain.KPISet, error) {
	started := time.Now()
	ds, err := s.loadDataset(ctx, false)
	if err != nil {
		s.metrics.IncReportError(metrics.ReportPipeline)
		return pipelinedomain.KPISet{}, err
	}
	report := s.pipeline.Calculate(pipelinedomain.CalculateInput{Prospects: ds.prospects}, s.clock.Now())
	s.metrics.ObserveReportBuild(metrics.ReportPipeline, time.Since(started))
	return report, nil
}

func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.loadDataset(ctx, true)
	return err
}

// loadDataset returns the cached dataset while it is fresh, otherwise pulls
// and maps a new one. The lock also serializes concurrent pulls so a slow
// provider is hit once, not once per request.
func (s *Service) loadDataset(ctx context.Context, force bool) (*dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if !force && s.cached != nil && now.Sub(s.cached.fetchedAt) < s.cfg.CacheTTL {
		s.metrics.IncCacheHit()
		return s.cached, nil
	}
	s.metrics.IncCacheMiss()

	raw, err := s.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}

	ds := mapDataset(raw, now)
	s.cached = ds

	s.metrics.SetDatasetRows("sales", len(ds.sales))
	s.metrics.SetDatasetRows("snapshots", len(ds.snapshots))
	s.metrics.SetDatasetRows("runs", len(ds.runs))
	s.metrics.SetDatasetRows("stops", len(ds.stops))
	s.metrics.SetDatasetRows("prospects", len(ds.prospects))
	s.log.Debug("dataset refreshed",
		zap.Int("sales", len(ds.sales)),
		zap.Int("snapshots", len(ds.snapshots)),
		zap.Time("fetched_at", ds.fetchedAt),
	)
	return ds, nil
}

func mapDataset(raw datasourcedomain.Dataset, fetchedAt time.Time) *dataset {
	ds := &dataset{
		sales:        make([]record.SaleRecord, 0, len(raw.Sales)),
		snapshots:    make([]record.InventorySnapshot, 0, len(raw.Snapshots)),
		runs:         make([]record.RouteRun, 0, len(raw.Runs)),
		stops:        make([]record.RouteStop, 0, len(raw.Stops)),
		prospects:    make([]record.ProspectRecord, 0, len(raw.Prospects)),
		machineNames: raw.MachineNames,
		productNames: raw.ProductNames,
		fetchedAt:    fetchedAt,
	}
	for _, row := range raw.Sales {
		ds.sales = append(ds.sales, record.SaleFromRaw(row))
	}
	for _, row := range raw.Snapshots {
		ds.snapshots = append(ds.snapshots, record.SnapshotFromRaw(row))
	}
	for _, row := range raw.Runs {
		ds.runs = append(ds.runs, record.RunFromRaw(row))
	}
	for _, row := range raw.Stops {
		ds.stops = append(ds.stops, record.StopFromRaw(row))
	}
	for _, row := range raw.Prospects {
		ds.prospects = append(ds.prospects, record.ProspectFromRaw(row))
	}
	return ds
}

// splitWindows partitions dated sales into the current window (the trailing
// windowDays including today) and the equal-length window before it. Undated
// sales fall in neither.
func splitWindows(sales []record.SaleRecord, now time.Time, windowDays int) (current, previous []record.SaleRecord) {
	today := now.UTC().Truncate(24 * time.Hour)
	currStart := today.AddDate(0, 0, -(windowDays - 1))
	prevStart := currStart.AddDate(0, 0, -windowDays)

	current = make([]record.SaleRecord, 0, len(sales))
	previous = make([]record.SaleRecord, 0)
	for _, sale := range sales {
		if !sale.Dated() {
			continue
		}
		occurred := sale.OccurredAt.UTC()
		switch {
		case !occurred.Before(currStart) && occurred.Before(today.AddDate(0, 0, 1)):
			current = append(current, sale)
		case !occurred.Before(prevStart) && occurred.Before(currStart):
			previous = append(previous, sale)
		}
	}
	return current, previous
}
