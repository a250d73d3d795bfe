// Package domain defines the inventory risk report contract.
package domain

import (
	"time"

	"github.com/smallbiznis/vendhub/internal/record"
)

// StockHealth is the 4-way bucket of a slot. Exactly one bucket applies to
// every item.
type StockHealth string

const (
	StockHealthOut    StockHealth = "out"
	StockHealthLow    StockHealth = "low"
	StockHealthMedium StockHealth = "medium"
	StockHealthGood   StockHealth = "good"
)

// Urgency labels how quickly a reorder-triggering item needs attention.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
)

// RiskItem is the scored view of one machine/product/slot triple.
type RiskItem struct {
	MachineID   string `json:"machine_id"`
	MachineName string `json:"machine_name"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SlotID      string `json:"slot_id"`

	CurrentQty    int64   `json:"current_qty"`
	ParLevel      int64   `json:"par_level"`
	ReorderPoint  int64   `json:"reorder_point"`
	SalesVelocity float64 `json:"sales_velocity"`
	DaysOfSupply  float64 `json:"days_of_supply"`

	Score        int         `json:"score"` // 0..100
	Health       StockHealth `json:"health"`
	NeedsReorder bool        `json:"needs_reorder"`
	Urgency      Urgency     `json:"urgency,omitempty"` // set when NeedsReorder
}

// Report is the full inventory risk assessment, recomputed from scratch on
// every call.
type Report struct {
	Items []RiskItem `json:"items"` // sorted by score descending

	TotalItems   int `json:"total_items"`
	OutCount     int `json:"out_count"`
	LowCount     int `json:"low_count"`
	MediumCount  int `json:"medium_count"`
	GoodCount    int `json:"good_count"`
	ReorderCount int `json:"reorder_count"`

	GeneratedAt time.Time `json:"generated_at"`
}

// AssessInput carries the snapshots plus caller-resolved display names.
type AssessInput struct {
	Snapshots    []record.InventorySnapshot
	MachineNames record.NameLookup
	ProductNames record.NameLookup
}

// Service scores inventory snapshots. Implementations are pure; concurrent
// calls on independent inputs need no coordination.
type Service interface {
	Assess(input AssessInput, now time.Time) Report
}
