package service

import (
	"sort"
	"time"

	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/inventory/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxScore = 100

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
		log:        p.Log.Named("inventory.service"),
		heuristics: p.Heuristics,
	}
}

// Assess scores every snapshot and buckets it into a stock-health class.
func (s *Service) Assess(input domain.AssessInput, now time.Time) domain.Report {
	h := s.heuristics.Get().Risk

	report := domain.Report{
		Items:       make([]domain.RiskItem, 0, len(input.Snapshots)),
		GeneratedAt: now,
	}

	for _, snap := range input.Snapshots {
		item := assessOne(snap, h)
		item.MachineName = input.MachineNames.Resolve(snap.MachineID)
		item.ProductName = input.ProductNames.Resolve(snap.ProductID)

		report.Items = append(report.Items, item)
		report.TotalItems++
		switch item.Health {
		case domain.StockHealthOut:
			report.OutCount++
		case domain.StockHealthLow:
			report.LowCount++
		case domain.StockHealthMedium:
			report.MediumCount++
		case domain.StockHealthGood:
			report.GoodCount++
		}
		if item.NeedsReorder {
			report.ReorderCount++
		}
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].Score != report.Items[j].Score {
			return report.Items[i].Score > report.Items[j].Score
		}
		if report.Items[i].MachineID != report.Items[j].MachineID {
			return report.Items[i].MachineID < report.Items[j].MachineID
		}
		return report.Items[i].ProductID < report.Items[j].ProductID
	})

	return report
}

func assessOne(snap record.InventorySnapshot, h config.RiskHeuristics) domain.RiskItem {
	par, reorder := effectiveLevels(snap)

	score := scoreStockLevel(snap.CurrentQty, par, h.StockTiers) +
		scoreVelocity(snap.SalesVelocity, h.VelocityTiers) +
		scoreSupply(snap.DaysOfSupply, h.SupplyTiers)
	if score > maxScore {
		score = maxScore
	}

	item := domain.RiskItem{
		MachineID:     snap.MachineID,
		ProductID:     snap.ProductID,
		SlotID:        snap.SlotID,
		CurrentQty:    snap.CurrentQty,
		ParLevel:      snap.ParLevel,
		ReorderPoint:  snap.ReorderPoint,
		SalesVelocity: snap.SalesVelocity,
		DaysOfSupply:  snap.DaysOfSupply,
		Score:         score,
		Health:        classify(snap.CurrentQty, par, reorder),
	}

	if snap.CurrentQty <= reorder {
		item.NeedsReorder = true
		item.Urgency = urgency(snap.CurrentQty, reorder)
	}

	return item
}

// effectiveLevels substitutes safe values for missing par/reorder levels.
// A snapshot without them must never classify as healthy.
func effectiveLevels(snap record.InventorySnapshot) (par, reorder int64) {
	par = snap.ParLevel
	if par <= 0 {
		par = 1
	}
	reorder = snap.ReorderPoint
	if snap.ReorderPoint <= 0 {
		reorder = snap.CurrentQty
	}
	return par, reorder
}

func scoreStockLevel(qty, par int64, tiers []config.ScoreTier) int {
	ratio := float64(qty) / float64(par)
	for _, tier := range tiers {
		if ratio <= tier.Limit {
			return tier.Points
		}
	}
	return 0
}

func scoreVelocity(velocity float64, tiers []config.ScoreTier) int {
	for _, tier := range tiers {
		if velocity > tier.Limit {
			return tier.Points
		}
	}
	return 0
}

func scoreSupply(days float64, tiers []config.ScoreTier) int {
	for _, tier := range tiers {
		if days < tier.Limit {
			return tier.Points
		}
	}
	return 0
}

// classify assigns the stock-health bucket; checks run in order and the
// first match wins, so assignment is exhaustive and mutually exclusive.
func classify(qty, par, reorder int64) domain.StockHealth {
	switch {
	case qty == 0:
		return domain.StockHealthOut
	case qty <= reorder:
		return domain.StockHealthLow
	case float64(qty) >= 0.8*float64(par):
		return domain.StockHealthGood
	default:
		return domain.StockHealthMedium
	}
}

func urgency(qty, reorder int64) domain.Urgency {
	switch {
	case qty == 0:
		return domain.UrgencyCritical
	case float64(qty) <= 0.5*float64(reorder):
		return domain.UrgencyHigh
	default:
		return domain.UrgencyMedium
	}
}
