// Package domain defines the period-over-period mover contract.
package domain

import (
	"time"

	"github.com/smallbiznis/vendhub/internal/record"
)

// GroupBy selects the dimension movers are ranked on.
type GroupBy string

const (
	GroupByMachine        GroupBy = "machine"
	GroupByProduct        GroupBy = "product"
	GroupByMachineProduct GroupBy = "machine_product"
)

// Entry is one grouping key's movement between the two windows. A key seen
// in either window appears; missing sides default to zero.
type Entry struct {
	Key   string `json:"key"`
	Label string `json:"label"`

	CurrentRevenueCents  int64 `json:"current_revenue_cents"`
	PreviousRevenueCents int64 `json:"previous_revenue_cents"`
	DeltaCents           int64 `json:"delta_cents"`

	CurrentTx  int `json:"current_tx"`
	PreviousTx int `json:"previous_tx"`

	// PctLabel is the display percent change; "∞%" when there was no
	// previous revenue to compare against.
	PctLabel string `json:"pct_label"`
}

// Report holds the ranked movement lists. Gainers and decliners are
// disjoint: zero-delta keys appear in neither.
type Report struct {
	Gainers   []Entry `json:"gainers"`   // delta > 0, largest first
	Decliners []Entry `json:"decliners"` // delta < 0, most negative first

	GroupBy    GroupBy   `json:"group_by"`
	WindowDays int       `json:"window_days"`
	KeysSeen   int       `json:"keys_seen"`
	TopN       int       `json:"top_n"`

	GeneratedAt time.Time `json:"generated_at"`
}

// AnalyzeInput carries both windows plus caller-resolved display names.
type AnalyzeInput struct {
	Current  []record.SaleRecord
	Previous []record.SaleRecord

	GroupBy    GroupBy
	WindowDays int
	TopN       int

	MachineNames record.NameLookup
	ProductNames record.NameLookup
}

// Service ranks revenue gainers and decliners between two equal windows.
type Service interface {
	Analyze(input AnalyzeInput, now time.Time) Report
}
