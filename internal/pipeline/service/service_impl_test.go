package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/pipeline/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() domain.Service {
	return NewService(ServiceParam{
		Log:        zap.NewNop(),
		Heuristics: config.NewStaticHeuristicsHolder(config.DefaultHeuristics()),
	})
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCalculateKPISet(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	at := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	}

	prospects := []record.ProspectRecord{
		{ID: "p1", Stage: record.StageWon, CreatedAt: at(2026, 8, 1), WonAt: timePtr(at(2026, 8, 11)), Source: "Referral"},
		{ID: "p2", Stage: record.StageWon, CreatedAt: at(2026, 8, 10), WonAt: timePtr(at(2026, 8, 20)), Source: "Referral"},
		// no createdAt: excluded from cycle and recency metrics
		{ID: "p3", Stage: record.StageWon, WonAt: timePtr(at(2026, 7, 10)), Source: "Trade Show"},
		{ID: "p4", Stage: record.StageLost, CreatedAt: at(2026, 7, 15), LostAt: timePtr(at(2026, 8, 5)), Source: "Cold Call"},
		{ID: "p5", Stage: record.StageQualified, CreatedAt: at(2026, 8, 25), EstimatedValueCents: 50000, Source: "Referral"},
		{ID: "p6", Stage: record.StageContacted, CreatedAt: at(2026, 6, 1), EstimatedValueCents: 25000, Source: "Cold Call"},
		{ID: "p7", Stage: record.StageNew, CreatedAt: at(2026, 8, 28), Source: "Web Form"},
	}

	kpi := svc.Calculate(domain.CalculateInput{Prospects: prospects}, now)

	assert.Equal(t, 7, kpi.Total)
	assert.Equal(t, 3, kpi.Active)
	assert.Equal(t, 3, kpi.Won)
	assert.Equal(t, 1, kpi.Lost)

	assert.Equal(t, 2, kpi.NewLast7Days)
	assert.Equal(t, 4, kpi.NewLast30Days)

	assert.Equal(t, 2, kpi.WonThisMonth)
	assert.Equal(t, 1, kpi.WonLastMonth)
	assert.InDelta(t, 100.0, kpi.MonthlyGrowthPct, 1e-9)

	// 3 won out of 4 closed
	assert.InDelta(t, 75.0, kpi.ConversionRatePct, 1e-9)
	// everyone past the entry stage, lost included; only p7 is still new
	assert.InDelta(t, 100.0*6.0/7.0, kpi.QualificationRatePct, 1e-9)

	// p1 and p2 both closed in 10 days; p3 has no createdAt
	assert.InDelta(t, 10.0, kpi.AvgSalesCycleDays, 1e-9)

	assert.Equal(t, int64(75000), kpi.PipelineValueCents)
	assert.Equal(t, 1, kpi.Stalled)

	assert.Equal(t, 3, kpi.StageDistribution[record.StageWon])
	assert.Equal(t, 1, kpi.StageDistribution[record.StageLost])
	assert.Equal(t, 1, kpi.StageDistribution[record.StageQualified])
	assert.Equal(t, 1, kpi.StageDistribution[record.StageContacted])
	assert.Equal(t, 1, kpi.StageDistribution[record.StageNew])
	assert.Equal(t, 0, kpi.StageDistribution[record.StageProposal])

	require.Len(t, kpi.SourceStats, 4)
	referral := kpi.SourceStats[0]
	assert.Equal(t, "Referral", referral.Source)
	assert.Equal(t, "referral", referral.Slug)
	assert.Equal(t, 3, referral.Total)
	assert.Equal(t, 2, referral.Won)
	assert.InDelta(t, 100.0*2.0/3.0, referral.WonRatePct, 1e-9)
	assert.Equal(t, 3, referral.Qualified)
	assert.InDelta(t, 100.0, referral.QualifiedRatePct, 1e-9)

	coldCall := kpi.SourceStats[1]
	assert.Equal(t, "Cold Call", coldCall.Source)
	assert.Equal(t, "cold-call", coldCall.Slug)
	assert.Equal(t, 2, coldCall.Total)
	assert.Equal(t, 0, coldCall.Won)
	assert.Equal(t, 0.0, coldCall.WonRatePct)
	assert.Equal(t, 0, coldCall.Qualified)

	tradeShow := kpi.SourceStats[2]
	assert.Equal(t, "trade-show", tradeShow.Slug)
	assert.Equal(t, 1, tradeShow.Won)
	assert.InDelta(t, 100.0, tradeShow.WonRatePct, 1e-9)

	assert.Equal(t, "web-form", kpi.SourceStats[3].Slug)
	assert.Equal(t, now, kpi.GeneratedAt)
}

func TestCalculateEmptyInput(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	kpi := svc.Calculate(domain.CalculateInput{}, now)

	assert.Equal(t, 0, kpi.Total)
	assert.Equal(t, 0.0, kpi.ConversionRatePct)
	assert.Equal(t, 0.0, kpi.MonthlyGrowthPct)
	assert.Equal(t, 0.0, kpi.AvgSalesCycleDays)
	require.NotNil(t, kpi.SourceStats)
	assert.Empty(t, kpi.SourceStats)

	// every stage key is present even with no prospects
	assert.Len(t, kpi.StageDistribution, len(record.Stages))
	for _, stage := range record.Stages {
		assert.Equal(t, 0, kpi.StageDistribution[stage])
	}
}

func TestCalculateGrowthFromQuietMonth(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	won := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	kpi := svc.Calculate(domain.CalculateInput{Prospects: []record.ProspectRecord{
		{ID: "p1", Stage: record.StageWon, CreatedAt: won.AddDate(0, 0, -5), WonAt: timePtr(won), Source: "Referral"},
	}}, now)

	assert.Equal(t, 1, kpi.WonThisMonth)
	assert.Equal(t, 0, kpi.WonLastMonth)
	// no baseline month to grow from
	assert.Equal(t, 0.0, kpi.MonthlyGrowthPct)
}

func TestCalculateQualificationCountsEveryAdvancedStage(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// contacted and lost both advanced past the entry stage; only the
	// untouched prospect drags the rate down
	kpi := svc.Calculate(domain.CalculateInput{Prospects: []record.ProspectRecord{
		{ID: "p1", Stage: record.StageContacted, CreatedAt: now.AddDate(0, 0, -3), Source: "Referral"},
		{ID: "p2", Stage: record.StageLost, CreatedAt: now.AddDate(0, 0, -20), Source: "Referral"},
		{ID: "p3", Stage: record.StageNew, CreatedAt: now.AddDate(0, 0, -1), Source: "Web Form"},
	}}, now)

	assert.InDelta(t, 100.0*2.0/3.0, kpi.QualificationRatePct, 1e-9)
}

func TestCalculateStalledThreshold(t *testing.T) {
	svc := NewService(ServiceParam{
		Log: zap.NewNop(),
		Heuristics: config.NewStaticHeuristicsHolder(config.Heuristics{
			Risk:     config.DefaultHeuristics().Risk,
			Stockout: config.DefaultHeuristics().Stockout,
			Pipeline: config.PipelineHeuristics{StalledAfterDays: 10},
		}),
	})
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	kpi := svc.Calculate(domain.CalculateInput{Prospects: []record.ProspectRecord{
		{ID: "old", Stage: record.StageContacted, CreatedAt: now.AddDate(0, 0, -11), Source: "s"},
		{ID: "fresh", Stage: record.StageContacted, CreatedAt: now.AddDate(0, 0, -9), Source: "s"},
		// closed prospects never count as stalled
		{ID: "won", Stage: record.StageWon, CreatedAt: now.AddDate(0, 0, -60), Source: "s"},
	}}, now)

	assert.Equal(t, 1, kpi.Stalled)
}

func TestCalculateSourceStatsTruncated(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	var prospects []record.ProspectRecord
	for i := 0; i < 7; i++ {
		source := fmt.Sprintf("Source %d", i)
		// source i contributes i+1 prospects
		for j := 0; j <= i; j++ {
			prospects = append(prospects, record.ProspectRecord{
				ID:     fmt.Sprintf("p-%d-%d", i, j),
				Stage:  record.StageNew,
				Source: source,
			})
		}
	}

	kpi := svc.Calculate(domain.CalculateInput{Prospects: prospects}, now)

	require.Len(t, kpi.SourceStats, 5)
	assert.Equal(t, "Source 6", kpi.SourceStats[0].Source)
	assert.Equal(t, 7, kpi.SourceStats[0].Total)
	assert.Equal(t, "Source 2", kpi.SourceStats[4].Source)
}
