package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/inventory/domain"
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

func TestAssessOutOfStockFastMover(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{{
			MachineID:     "vm-1",
			ProductID:     "prod-cola",
			SlotID:        "A1",
			CurrentQty:    0,
			ParLevel:      10,
			ReorderPoint:  3,
			SalesVelocity: 6,
			DaysOfSupply:  0,
		}},
		MachineNames: record.NameLookup{"vm-1": "Machine A"},
		ProductNames: record.NameLookup{"prod-cola": "Cola"},
	}, now)

	require.Len(t, report.Items, 1)
	item := report.Items[0]

	// 40 (empty) + 30 (fast mover) + 30 (no supply) caps at 100
	assert.Equal(t, 100, item.Score)
	assert.Equal(t, domain.StockHealthOut, item.Health)
	assert.True(t, item.NeedsReorder)
	assert.Equal(t, domain.UrgencyCritical, item.Urgency)
	assert.Equal(t, "Machine A", item.MachineName)
	assert.Equal(t, "Cola", item.ProductName)
	assert.Equal(t, 1, report.OutCount)
	assert.Equal(t, 1, report.ReorderCount)
	assert.Equal(t, now, report.GeneratedAt)
}

func TestAssessHealthySlowMover(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{{
			MachineID:     "vm-1",
			ProductID:     "prod-water",
			CurrentQty:    8,
			ParLevel:      10,
			ReorderPoint:  3,
			SalesVelocity: 0.5,
			DaysOfSupply:  16,
		}},
	}, time.Now())

	require.Len(t, report.Items, 1)
	item := report.Items[0]

	assert.Equal(t, 15, item.Score)
	assert.Equal(t, domain.StockHealthGood, item.Health)
	assert.False(t, item.NeedsReorder)
	assert.Empty(t, item.Urgency)
	assert.Equal(t, 1, report.GoodCount)
	assert.Equal(t, 0, report.ReorderCount)
}

func TestAssessBucketsAreExhaustiveAndExclusive(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{
			{MachineID: "vm-1", ProductID: "p1", CurrentQty: 0, ParLevel: 10, ReorderPoint: 3, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p2", CurrentQty: 2, ParLevel: 10, ReorderPoint: 4, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p3", CurrentQty: 4, ParLevel: 10, ReorderPoint: 2, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p4", CurrentQty: 9, ParLevel: 10, ReorderPoint: 2, DaysOfSupply: 10},
		},
	}, time.Now())

	assert.Equal(t, 4, report.TotalItems)
	assert.Equal(t, 1, report.OutCount)
	assert.Equal(t, 1, report.LowCount)
	assert.Equal(t, 1, report.MediumCount)
	assert.Equal(t, 1, report.GoodCount)
	assert.Equal(t, report.TotalItems, report.OutCount+report.LowCount+report.MediumCount+report.GoodCount)
}

func TestAssessMissingLevelsNeverClassifyHealthy(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{{
			MachineID:    "vm-1",
			ProductID:    "p1",
			CurrentQty:   5,
			ParLevel:     0,
			ReorderPoint: 0,
			DaysOfSupply: 10,
		}},
	}, time.Now())

	require.Len(t, report.Items, 1)
	item := report.Items[0]

	assert.Equal(t, domain.StockHealthLow, item.Health)
	assert.True(t, item.NeedsReorder)
	assert.Equal(t, domain.UrgencyMedium, item.Urgency)
}

func TestAssessReorderUrgencyLevels(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{
			{MachineID: "vm-1", ProductID: "p1", CurrentQty: 0, ParLevel: 10, ReorderPoint: 4, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p2", CurrentQty: 2, ParLevel: 10, ReorderPoint: 4, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p3", CurrentQty: 4, ParLevel: 10, ReorderPoint: 4, DaysOfSupply: 10},
		},
	}, time.Now())

	byProduct := make(map[string]domain.RiskItem, len(report.Items))
	for _, item := range report.Items {
		byProduct[item.ProductID] = item
	}

	assert.Equal(t, domain.UrgencyCritical, byProduct["p1"].Urgency)
	assert.Equal(t, domain.UrgencyHigh, byProduct["p2"].Urgency)
	assert.Equal(t, domain.UrgencyMedium, byProduct["p3"].Urgency)
	assert.Equal(t, 3, report.ReorderCount)
}

func TestAssessSortsByScoreDescending(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{
		Snapshots: []record.InventorySnapshot{
			{MachineID: "vm-2", ProductID: "p1", CurrentQty: 9, ParLevel: 10, ReorderPoint: 2, DaysOfSupply: 10},
			{MachineID: "vm-1", ProductID: "p1", CurrentQty: 0, ParLevel: 10, ReorderPoint: 2, SalesVelocity: 6, DaysOfSupply: 0},
			{MachineID: "vm-3", ProductID: "p1", CurrentQty: 2, ParLevel: 10, ReorderPoint: 4, SalesVelocity: 4, DaysOfSupply: 2},
		},
	}, time.Now())

	require.Len(t, report.Items, 3)
	for i := 1; i < len(report.Items); i++ {
		assert.GreaterOrEqual(t, report.Items[i-1].Score, report.Items[i].Score)
	}
	assert.Equal(t, "vm-1", report.Items[0].MachineID)
}

func TestAssessEmptyInput(t *testing.T) {
	svc := newTestService()

	report := svc.Assess(domain.AssessInput{}, time.Now())

	require.NotNil(t, report.Items)
	assert.Empty(t, report.Items)
	assert.Equal(t, 0, report.TotalItems)
}
