package service

import (
	"testing"
	"time"

	"github.com/smallbiznis/vendhub/internal/aggregate"
	"github.com/smallbiznis/vendhub/internal/config"
	"github.com/smallbiznis/vendhub/internal/movers/domain"
	"github.com/smallbiznis/vendhub/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() domain.Service {
	return NewService(ServiceParam{
		Log: zap.NewNop(),
		Cfg: config.Config{Reports: config.ReportsConfig{MoverWindowDays: 30, TopN: 5}},
	})
}

func machineSale(machineID string, revenueCents int64) record.SaleRecord {
	return record.SaleRecord{
		MachineID:      machineID,
		ProductID:      "prod-cola",
		OccurredAt:     time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Quantity:       1,
		UnitPriceCents: revenueCents,
	}
}

func TestAnalyzeGainersAndDeclinersAreDisjoint(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	report := svc.Analyze(domain.AnalyzeInput{
		Current: []record.SaleRecord{
			machineSale("vm-up", 2000),
			machineSale("vm-new", 500),
			machineSale("vm-flat", 1000),
		},
		Previous: []record.SaleRecord{
			machineSale("vm-up", 1000),
			machineSale("vm-down", 1000),
			machineSale("vm-flat", 1000),
		},
		GroupBy: domain.GroupByMachine,
	}, now)

	assert.Equal(t, 4, report.KeysSeen)
	require.Len(t, report.Gainers, 2)
	require.Len(t, report.Decliners, 1)

	up := report.Gainers[0]
	assert.Equal(t, "vm-up", up.Key)
	assert.Equal(t, int64(1000), up.DeltaCents)
	assert.Equal(t, "100.0%", up.PctLabel)

	fresh := report.Gainers[1]
	assert.Equal(t, "vm-new", fresh.Key)
	assert.Equal(t, "∞%", fresh.PctLabel)

	down := report.Decliners[0]
	assert.Equal(t, "vm-down", down.Key)
	assert.Equal(t, int64(-1000), down.DeltaCents)
	assert.Equal(t, 0, down.CurrentTx)
	assert.Equal(t, 1, down.PreviousTx)
	assert.Equal(t, "-100.0%", down.PctLabel)

	// zero-delta keys appear in neither list
	for _, entry := range append(report.Gainers, report.Decliners...) {
		assert.NotEqual(t, "vm-flat", entry.Key)
	}
	assert.Equal(t, now, report.GeneratedAt)
}

func TestAnalyzeTopNTruncation(t *testing.T) {
	svc := newTestService()

	report := svc.Analyze(domain.AnalyzeInput{
		Current: []record.SaleRecord{
			machineSale("vm-1", 3000),
			machineSale("vm-2", 2000),
			machineSale("vm-3", 1000),
		},
		GroupBy: domain.GroupByMachine,
		TopN:    2,
	}, time.Now())

	require.Len(t, report.Gainers, 2)
	assert.Equal(t, "vm-1", report.Gainers[0].Key)
	assert.Equal(t, "vm-2", report.Gainers[1].Key)
	assert.Equal(t, 3, report.KeysSeen)
	assert.Equal(t, 2, report.TopN)
}

func TestAnalyzeDefaultsFromConfig(t *testing.T) {
	svc := newTestService()

	report := svc.Analyze(domain.AnalyzeInput{GroupBy: domain.GroupByMachine}, time.Now())

	assert.Equal(t, 30, report.WindowDays)
	assert.Equal(t, 5, report.TopN)
	require.NotNil(t, report.Gainers)
	require.NotNil(t, report.Decliners)
	assert.Empty(t, report.Gainers)
	assert.Empty(t, report.Decliners)
}

func TestAnalyzeGroupByProductLabels(t *testing.T) {
	svc := newTestService()

	sale := record.SaleRecord{
		MachineID:      "vm-1",
		ProductID:      "prod-cola",
		Quantity:       2,
		UnitPriceCents: 250,
	}

	report := svc.Analyze(domain.AnalyzeInput{
		Current:      []record.SaleRecord{sale},
		GroupBy:      domain.GroupByProduct,
		ProductNames: record.NameLookup{"prod-cola": "Cola"},
	}, time.Now())

	require.Len(t, report.Gainers, 1)
	assert.Equal(t, "prod-cola", report.Gainers[0].Key)
	assert.Equal(t, "Cola", report.Gainers[0].Label)
	assert.Equal(t, int64(500), report.Gainers[0].CurrentRevenueCents)
}

func TestAnalyzeGroupByMachineProductLabels(t *testing.T) {
	svc := newTestService()

	sale := record.SaleRecord{
		MachineID:      "vm-1",
		ProductID:      "prod-cola",
		Quantity:       1,
		UnitPriceCents: 250,
	}

	report := svc.Analyze(domain.AnalyzeInput{
		Current:      []record.SaleRecord{sale},
		GroupBy:      domain.GroupByMachineProduct,
		MachineNames: record.NameLookup{"vm-1": "Machine A"},
		ProductNames: record.NameLookup{"prod-cola": "Cola"},
	}, time.Now())

	require.Len(t, report.Gainers, 1)
	assert.Equal(t, aggregate.CompositeKey("vm-1", "prod-cola"), report.Gainers[0].Key)
	assert.Equal(t, aggregate.CompositeKey("Machine A", "Cola"), report.Gainers[0].Label)
}
