package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/smallbiznis/vendhub/internal/aggregate"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/movers/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	fieldRevenue = "revenue"
	fieldTx      = "tx"
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
		log: p.Log.Named("movers.service"),
		cfg: p.Cfg.Reports,
	}
}

// Analyze aggregates revenue and transaction count per key independently
// for each window, then ranks keys by revenue delta. Every key seen in
// either window participates; the missing side counts as zero.
func (s *Service) Analyze(input domain.AnalyzeInput, now time.Time) domain.Report {
	topN := input.TopN
	if topN <= 0 {
		topN = s.cfg.TopN
	}
	windowDays := input.WindowDays
	if windowDays <= 0 {
		windowDays = s.cfg.MoverWindowDays
	}

	keyFn := keyFunc(input.GroupBy)
	fields := []aggregate.Field[record.SaleRecord]{
		{Name: fieldRevenue, Op: aggregate.Sum, Value: func(sale record.SaleRecord) float64 {
			return float64(sale.RevenueCents())
		}},
		{Name: fieldTx, Op: aggregate.Count},
	}

	curr := aggregate.Group(input.Current, keyFn, fields)
	prev := aggregate.Group(input.Previous, keyFn, fields)

	keys := make(map[string]bool, len(curr)+len(prev))
	for key := range curr {
		keys[key] = true
	}
	for key := range prev {
		keys[key] = true
	}

	var gainers, decliners []domain.Entry
	for key := range keys {
		entry := domain.Entry{
			Key:                  key,
			Label:                label(key, input),
			CurrentRevenueCents:  int64(curr[key][fieldRevenue]),
			PreviousRevenueCents: int64(prev[key][fieldRevenue]),
			CurrentTx:            int(curr[key][fieldTx]),
			PreviousTx:           int(prev[key][fieldTx]),
		}
		entry.DeltaCents = entry.CurrentRevenueCents - entry.PreviousRevenueCents
		entry.PctLabel = pctLabel(entry.CurrentRevenueCents, entry.PreviousRevenueCents)

		switch {
		case entry.DeltaCents > 0:
			gainers = append(gainers, entry)
		case entry.DeltaCents < 0:
			decliners = append(decliners, entry)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		if gainers[i].DeltaCents != gainers[j].DeltaCents {
			return gainers[i].DeltaCents > gainers[j].DeltaCents
		}
		return gainers[i].Key < gainers[j].Key
	})
	sort.SliceStable(decliners, func(i, j int) bool {
		if decliners[i].DeltaCents != decliners[j].DeltaCents {
			return decliners[i].DeltaCents < decliners[j].DeltaCents
		}
		return decliners[i].Key < decliners[j].Key
	})

	return domain.Report{
		Gainers:     truncate(gainers, topN),
		Decliners:   truncate(decliners, topN),
		GroupBy:     input.GroupBy,
		WindowDays:  windowDays,
		KeysSeen:    len(keys),
		TopN:        topN,
		GeneratedAt: now,
	}
}

func keyFunc(groupBy domain.GroupBy) func(record.SaleRecord) string {
	switch groupBy {
	case domain.GroupByProduct:
		return func(sale record.SaleRecord) string { return sale.ProductID }
	case domain.GroupByMachineProduct:
		return func(sale record.SaleRecord) string {
			return aggregate.CompositeKey(sale.MachineID, sale.ProductID)
		}
	default:
		return func(sale record.SaleRecord) string { return sale.MachineID }
	}
}

func label(key string, input domain.AnalyzeInput) string {
	switch input.GroupBy {
	case domain.GroupByProduct:
		return input.ProductNames.Resolve(key)
	case domain.GroupByMachineProduct:
		parts := aggregate.SplitKey(key)
		if len(parts) != 2 {
			return record.UnknownValue
		}
		return aggregate.CompositeKey(input.MachineNames.Resolve(parts[0]), input.ProductNames.Resolve(parts[1]))
	default:
		return input.MachineNames.Resolve(key)
	}
}

// pctLabel renders the percent change with explicit zero-denominator
// sentinels so NaN and Inf never reach the output.
func pctLabel(curr, prev int64) string {
	if prev == 0 {
		if curr > 0 {
			return "∞%"
		}
		return "0%"
	}
	pct := 100 * float64(curr-prev) / float64(prev)
	return fmt.Sprintf("%.1f%%", pct)
}

func truncate(entries []domain.Entry, topN int) []domain.Entry {
	if entries == nil {
		return []domain.Entry{}
	}
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
