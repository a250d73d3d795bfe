package service

import (
	"math"
	"sort"
	"time"

	"github.com/smallbiznis/vendhub/internal/aggregate"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/stockout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log        *zap.Logger
	cfg        config.ReportsConfig
	heuristics *config.HeuristicsHolder
}

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Heuristics *config.HeuristicsHolder
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:        p.Log.Named("stockout.service"),
		cfg:        p.Cfg.Reports,
		heuristics: p.Heuristics,
	}
}

type pairSeries struct {
	machineID string
	productID string
	current   []int
	previous  []int
}

// Detect builds a day-indexed transaction-count series per machine/product
// pair over the trailing window and the equal-length window before it, then
// flags pairs whose recent activity looks like a stockout. Pairs with no
// sales in either window never enter the series and are not flagged.
func (s *Service) Detect(input domain.DetectInput, now time.Time) domain.Report {
	days := s.cfg.StockoutWindowDays
	if days <= 0 {
		days = 14
	}
	h := s.heuristics.Get().Stockout

	today := truncateDay(now)
	currStart := today.AddDate(0, 0, -(days - 1))
	prevStart := currStart.AddDate(0, 0, -days)

	pairs := make(map[string]*pairSeries)
	for _, sale := range input.Sales {
		if !sale.Dated() {
			continue
		}
		day := truncateDay(sale.OccurredAt)

		currIdx := dayIndex(day, currStart, days)
		prevIdx := dayIndex(day, prevStart, days)
		if currIdx < 0 && prevIdx < 0 {
			// dates outside both windows are discarded
			continue
		}

		key := aggregate.CompositeKey(sale.MachineID, sale.ProductID)
		series, ok := pairs[key]
		if !ok {
			series = &pairSeries{
				machineID: sale.MachineID,
				productID: sale.ProductID,
				current:   make([]int, days),
				previous:  make([]int, days),
			}
			pairs[key] = series
		}

		if currIdx >= 0 {
			series.current[currIdx]++
		} else {
			series.previous[prevIdx]++
		}
	}

	report := domain.Report{
		Candidates:  make([]domain.Candidate, 0),
		WindowDays:  days,
		PairsSeen:   len(pairs),
		GeneratedAt: now,
	}

	for _, series := range pairs {
		streak := trailingZeroDays(series.current)
		currTx := sum(series.current)
		prevTx := sum(series.previous)
		dropPct := dropPercent(currTx, prevTx)

		flagged := streak >= h.MinStreakDays ||
			(prevTx >= h.QuietPrevTx && currTx == 0) ||
			dropPct >= h.DropPctThreshold
		if !flagged {
			continue
		}

		report.Candidates = append(report.Candidates, domain.Candidate{
			MachineID:   series.machineID,
			MachineName: input.MachineNames.Resolve(series.machineID),
			ProductID:   series.productID,
			ProductName: input.ProductNames.Resolve(series.productID),
			Streak:      streak,
			DropPct:     dropPct,
			CurrentTx:   currTx,
			PreviousTx:  prevTx,
			Urgency:     urgency(streak, currTx, h),
		})
	}

	// most urgent first: longest silence, steepest drop, least current activity
	sort.SliceStable(report.Candidates, func(i, j int) bool {
		a, b := report.Candidates[i], report.Candidates[j]
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		if a.DropPct != b.DropPct {
			return a.DropPct > b.DropPct
		}
		if a.CurrentTx != b.CurrentTx {
			return a.CurrentTx < b.CurrentTx
		}
		if a.MachineID != b.MachineID {
			return a.MachineID < b.MachineID
		}
		return a.ProductID < b.ProductID
	})

	return report
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayIndex returns the 0-based offset of day within the window starting at
// start, or -1 when outside.
func dayIndex(day, start time.Time, days int) int {
	idx := int(day.Sub(start).Hours() / 24)
	if idx < 0 || idx >= days {
		return -1
	}
	return idx
}

// trailingZeroDays scans backward from the most recent day until a day with
// transactions or the series start.
func trailingZeroDays(series []int) int {
	streak := 0
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != 0 {
			break
		}
		streak++
	}
	return streak
}

func sum(series []int) int {
	total := 0
	for _, v := range series {
		total += v
	}
	return total
}

func dropPercent(currTx, prevTx int) int {
	if prevTx <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(prevTx-currTx) / float64(prevTx)))
	if pct < 0 {
		return 0
	}
	return pct
}

func urgency(streak, currTx int, h config.StockoutHeuristics) domain.Urgency {
	switch {
	case currTx == 0:
		return domain.UrgencyCritical
	case streak >= h.MinStreakDays:
		return domain.UrgencyHigh
	default:
		return domain.UrgencyMedium
	}
}
