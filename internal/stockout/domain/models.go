// Package domain defines the stockout detection contract.
package domain

import (
	"time"

	"github.com/smallbiznis/vendhub/internal/record"
)

// Urgency ranks a flagged candidate for the restock queue.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
)

// Candidate is one machine/product pair the detector flagged as a likely
// stockout. Only flagged pairs surface; healthy pairs are omitted entirely.
type Candidate struct {
	MachineID   string `json:"machine_id"`
	MachineName string `json:"machine_name"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`

	// Streak is the count of trailing zero-transaction days in the
	// current window.
	Streak int `json:"streak"`
	// DropPct is the transaction decline versus the previous window,
	// 0..100.
	DropPct int `json:"drop_pct"`

	CurrentTx  int `json:"current_tx"`
	PreviousTx int `json:"previous_tx"`

	Urgency Urgency `json:"urgency"`
}

// Report is the ranked stockout candidate list.
type Report struct {
	Candidates []Candidate `json:"candidates"`
	WindowDays int         `json:"window_days"`
	PairsSeen  int         `json:"pairs_seen"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DetectInput carries the sales covering both comparison windows plus
// caller-resolved display names.
type DetectInput struct {
	Sales        []record.SaleRecord
	MachineNames record.NameLookup
	ProductNames record.NameLookup
}

// Service detects likely stockouts from recent sales activity. This is a
// heuristic detector, not a statistical model; false positives are
// acceptable.
type Service interface {
	Detect(input DetectInput, now time.Time) Report
}
