// Package domain defines the sales pipeline KPI contract.
package domain

import (
	"time"

	"github.com/smallbiznis/vendhub/internal/record"
)

// SourceStat summarizes prospects from one acquisition source.
type SourceStat struct {
	Source    string `json:"source"`
	Slug      string `json:"slug"`
	Total     int    `json:"total"`
	Won       int    `json:"won"`
	Qualified int    `json:"qualified"`
	// WonRatePct is won/total as a percentage.
	WonRatePct float64 `json:"won_rate_pct"`
	// QualifiedRatePct is qualified/total as a percentage.
	QualifiedRatePct float64 `json:"qualified_rate_pct"`
}

// KPISet is the full pipeline health snapshot.
type KPISet struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`

	NewLast7Days  int `json:"new_last_7_days"`
	NewLast30Days int `json:"new_last_30_days"`

	WonThisMonth int `json:"won_this_month"`
	WonLastMonth int `json:"won_last_month"`
	// MonthlyGrowthPct compares won counts across the two calendar months.
	MonthlyGrowthPct float64 `json:"monthly_growth_pct"`

	ConversionRatePct float64 `json:"conversion_rate_pct"`
	// QualificationRatePct is the share of prospects that advanced past the
	// entry stage, whatever their eventual outcome.
	QualificationRatePct float64 `json:"qualification_rate_pct"`

	// AvgSalesCycleDays averages createdAt to wonAt over won prospects that
	// carry both timestamps.
	AvgSalesCycleDays float64 `json:"avg_sales_cycle_days"`

	PipelineValueCents int64 `json:"pipeline_value_cents"`

	// Stalled counts active prospects with no movement past the staleness
	// threshold.
	Stalled int `json:"stalled"`

	StageDistribution map[record.Stage]int `json:"stage_distribution"`
	SourceStats       []SourceStat         `json:"source_stats"`

	GeneratedAt time.Time `json:"generated_at"`
}

// CalculateInput carries the prospect set to summarize.
type CalculateInput struct {
	Prospects []record.ProspectRecord
}

// Service computes pipeline KPIs.
type Service interface {
	Calculate(input CalculateInput, now time.Time) KPISet
}
