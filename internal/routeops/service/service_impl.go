package service

import (
	"sort"
	"time"

	"github.com/smallbiznis/vendhub/internal/aggregate"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/record"
	"github.com/smallbiznis/vendhub/internal/routeops/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log *zap.Logger
	cfg config.ReportsConfig
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log: p.Log.Named("routeops.service"),
		cfg: p.Cfg.Reports,
	}
}

type totals struct {
	runs          int
	revenueCents  int64
	miles         float64
	stops         int
	durationHours float64
}

// Aggregate folds each run's stops, duration and attributed machine-day
// revenue into per-route and per-driver totals, then ranks both by revenue
// per active hour.
func (s *Service) Aggregate(input domain.AggregateInput, now time.Time) domain.Report {
	topN := input.TopN
	if topN <= 0 {
		topN = s.cfg.TopN
	}

	report := domain.Report{
		TopRoutes:   make([]domain.RouteMetric, 0),
		TopDrivers:  make([]domain.DriverMetric, 0),
		GeneratedAt: now,
	}
	if len(input.Runs) == 0 {
		return report
	}

	stopsByRun := make(map[string][]record.RouteStop, len(input.Runs))
	for _, stop := range input.Stops {
		stopsByRun[stop.RunID] = append(stopsByRun[stop.RunID], stop)
	}

	// full-day revenue per machine·date; the attribution grain
	revenueByMachineDay := aggregate.SumBy(datedSales(input.Sales), machineDayKey, func(sale record.SaleRecord) float64 {
		return float64(sale.RevenueCents())
	})

	routeTotals := make(map[string]*totals)
	driverTotals := make(map[string]*totals)

	for _, run := range input.Runs {
		stops := stopsByRun[run.ID]

		var runMiles float64
		machines := make(map[string]bool, len(stops))
		for _, stop := range stops {
			runMiles += stop.Miles
			machines[stop.MachineID] = true
		}

		var runRevenueCents int64
		if !run.StartedAt.IsZero() {
			day := dayKey(run.StartedAt)
			for machineID := range machines {
				runRevenueCents += int64(revenueByMachineDay[aggregate.CompositeKey(machineID, day)])
			}
		}

		durationHours := run.DurationHours()

		accumulate(routeTotals, run.RouteName, runRevenueCents, runMiles, len(stops), durationHours)
		accumulate(driverTotals, run.DriverName, runRevenueCents, runMiles, len(stops), durationHours)

		report.TotalRuns++
		report.TotalRevenueCents += runRevenueCents
		report.TotalMiles += runMiles
		report.TotalStops += len(stops)
		report.TotalDurationHours += durationHours
	}

	report.Efficiency = domain.Efficiency{
		MilesPerHour:        safeRatio(report.TotalMiles, report.TotalDurationHours),
		RevenueCentsPerHour: safeRatio(float64(report.TotalRevenueCents), report.TotalDurationHours),
		StopsPerHour:        safeRatio(float64(report.TotalStops), report.TotalDurationHours),
	}

	for name, t := range routeTotals {
		report.TopRoutes = append(report.TopRoutes, domain.RouteMetric{
			RouteName:              name,
			Runs:                   t.runs,
			RevenueCents:           t.revenueCents,
			Miles:                  t.miles,
			Stops:                  t.stops,
			DurationHours:          t.durationHours,
			AvgRevenueCents:        avgCents(t.revenueCents, t.runs),
			EfficiencyCentsPerHour: safeRatio(float64(t.revenueCents), t.durationHours),
		})
	}
	for name, t := range driverTotals {
		report.TopDrivers = append(report.TopDrivers, domain.DriverMetric{
			DriverName:             name,
			Runs:                   t.runs,
			RevenueCents:           t.revenueCents,
			Miles:                  t.miles,
			Stops:                  t.stops,
			DurationHours:          t.durationHours,
			AvgRevenueCents:        avgCents(t.revenueCents, t.runs),
			EfficiencyCentsPerHour: safeRatio(float64(t.revenueCents), t.durationHours),
		})
	}

	sort.SliceStable(report.TopRoutes, func(i, j int) bool {
		if report.TopRoutes[i].EfficiencyCentsPerHour != report.TopRoutes[j].EfficiencyCentsPerHour {
			return report.TopRoutes[i].EfficiencyCentsPerHour > report.TopRoutes[j].EfficiencyCentsPerHour
		}
		return report.TopRoutes[i].RouteName < report.TopRoutes[j].RouteName
	})
	sort.SliceStable(report.TopDrivers, func(i, j int) bool {
		if report.TopDrivers[i].EfficiencyCentsPerHour != report.TopDrivers[j].EfficiencyCentsPerHour {
			return report.TopDrivers[i].EfficiencyCentsPerHour > report.TopDrivers[j].EfficiencyCentsPerHour
		}
		return report.TopDrivers[i].DriverName < report.TopDrivers[j].DriverName
	})

	if len(report.TopRoutes) > topN {
		report.TopRoutes = report.TopRoutes[:topN]
	}
	if len(report.TopDrivers) > topN {
		report.TopDrivers = report.TopDrivers[:topN]
	}

	return report
}

func accumulate(byName map[string]*totals, name string, revenueCents int64, miles float64, stops int, durationHours float64) {
	t, ok := byName[name]
	if !ok {
		t = &totals{}
		byName[name] = t
	}
	t.runs++
	t.revenueCents += revenueCents
	t.miles += miles
	t.stops += stops
	t.durationHours += durationHours
}

func datedSales(sales []record.SaleRecord) []record.SaleRecord {
	out := make([]record.SaleRecord, 0, len(sales))
	for _, sale := range sales {
		if sale.Dated() {
			out = append(out, sale)
		}
	}
	return out
}

func machineDayKey(sale record.SaleRecord) string {
	return aggregate.CompositeKey(sale.MachineID, dayKey(sale.OccurredAt))
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}

func avgCents(total int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return total / int64(n)
}
