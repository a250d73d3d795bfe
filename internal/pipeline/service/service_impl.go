package service

import (
	"sort"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/pipeline/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// topSources caps the source breakdown to the most populous sources.
const topSources = 5

type Service struct {
	log        *zap.Logger
	heuristics *config.HeuristicsHolder
}

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	Heuristics *config.HeuristicsHolder
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:        p.Log.Named("pipeline.service"),
		heuristics: p.Heuristics,
	}
}

// Calculate folds the prospect set into one KPI snapshot. Prospects without
// a createdAt timestamp count toward totals and stage distribution but are
// excluded from every date-bucketed metric.
func (s *Service) Calculate(input domain.CalculateInput, now time.Time) domain.KPISet {
	cfg := s.heuristics.Get().Pipeline

	kpi := domain.KPISet{
		StageDistribution: make(map[record.Stage]int, len(record.Stages)),
		SourceStats:       make([]domain.SourceStat, 0),
		GeneratedAt:       now,
	}
	for _, stage := range record.Stages {
		kpi.StageDistribution[stage] = 0
	}

	thisMonthStart := monthStart(now)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)
	stalledBefore := now.AddDate(0, 0, -cfg.StalledAfterDays)

	var cycleDaysSum float64
	var cycleSamples int
	sources := make(map[string]*domain.SourceStat)

	for _, p := range input.Prospects {
		kpi.Total++
		kpi.StageDistribution[p.Stage]++

		switch p.Stage {
		case record.StageWon:
			kpi.Won++
		case record.StageLost:
			kpi.Lost++
		default:
			kpi.Active++
			kpi.PipelineValueCents += p.EstimatedValueCents
			if !p.CreatedAt.IsZero() && p.CreatedAt.Before(stalledBefore) {
				kpi.Stalled++
			}
		}

		if !p.CreatedAt.IsZero() {
			age := now.Sub(p.CreatedAt)
			if age >= 0 && age <= 7*24*time.Hour {
				kpi.NewLast7Days++
			}
			if age >= 0 && age <= 30*24*time.Hour {
				kpi.NewLast30Days++
			}
		}

		if p.WonAt != nil && !p.WonAt.IsZero() {
			if !p.WonAt.Before(thisMonthStart) {
				kpi.WonThisMonth++
			} else if !p.WonAt.Before(lastMonthStart) {
				kpi.WonLastMonth++
			}
			if !p.CreatedAt.IsZero() && !p.WonAt.Before(p.CreatedAt) {
				cycleDaysSum += p.WonAt.Sub(p.CreatedAt).Hours() / 24
				cycleSamples++
			}
		}

		stat, ok := sources[p.Source]
		if !ok {
			stat = &domain.SourceStat{Source: p.Source, Slug: slug.Make(p.Source)}
			sources[p.Source] = stat
		}
		stat.Total++
		if p.Stage == record.StageWon {
			stat.Won++
		}
		if p.Stage.Qualified() {
			stat.Qualified++
		}
	}

	kpi.ConversionRatePct = ratePct(kpi.Won, kpi.Won+kpi.Lost)
	// any prospect that moved past the entry stage counts as qualified for
	// the headline rate, including ones that later closed lost
	kpi.QualificationRatePct = ratePct(kpi.Total-kpi.StageDistribution[record.StageNew], kpi.Total)
	kpi.MonthlyGrowthPct = growthPct(kpi.WonThisMonth, kpi.WonLastMonth)
	if cycleSamples > 0 {
		kpi.AvgSalesCycleDays = cycleDaysSum / float64(cycleSamples)
	}

	for _, stat := range sources {
		stat.WonRatePct = ratePct(stat.Won, stat.Total)
		stat.QualifiedRatePct = ratePct(stat.Qualified, stat.Total)
		kpi.SourceStats = append(kpi.SourceStats, *stat)
	}
	sort.SliceStable(kpi.SourceStats, func(i, j int) bool {
		if kpi.SourceStats[i].Total != kpi.SourceStats[j].Total {
			return kpi.SourceStats[i].Total > kpi.SourceStats[j].Total
		}
		return kpi.SourceStats[i].Source < kpi.SourceStats[j].Source
	})
	if len(kpi.SourceStats) > topSources {
		kpi.SourceStats = kpi.SourceStats[:topSources]
	}

	return kpi
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func ratePct(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// growthPct compares this month to last. A zero previous month has no
// baseline to grow from and reads as 0, never as a division blowup.
func growthPct(curr, prev int) float64 {
	if prev == 0 {
		return 0
	}
	return 100 * float64(curr-prev) / float64(prev)
}
