package record

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaultsDeclaredFields(t *testing.T) {
	raw := Raw{
		"quantity":   nil,
		"miles":      "4.5",
		"machine_id": "  ",
		"extra":      "untouched",
	}
	out := Normalize(raw, Schema{
		NumericFields: []string{"quantity", "miles", "absent_num"},
		StringFields:  []string{"machine_id", "absent_str"},
	})

	assert.Equal(t, float64(0), out["quantity"])
	assert.Equal(t, 4.5, out["miles"])
	assert.Equal(t, float64(0), out["absent_num"])
	assert.Equal(t, UnknownValue, out["machine_id"])
	assert.Equal(t, UnknownValue, out["absent_str"])
	assert.Equal(t, "untouched", out["extra"])

	// input map stays untouched
	assert.Nil(t, raw["quantity"])
}

func TestNumCoercionAndClamping(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 3.25, 3.25},
		{"int", 7, 7},
		{"int64", int64(12), 12},
		{"numeric string", " 42 ", 42},
		{"garbage string", "n/a", 0},
		{"negative", -5.0, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"bool true", true, 1},
		{"unsupported", []string{"x"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Num(Raw{"v": tc.in}, "v"))
		})
	}
}

func TestIntTruncatesFractions(t *testing.T) {
	assert.Equal(t, int64(3), Int(Raw{"v": 3.9}, "v"))
	assert.Equal(t, int64(0), Int(Raw{"v": -3.9}, "v"))
}

func TestTimeParsesCommonEncodings(t *testing.T) {
	anchor := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

	got, ok := Time(Raw{"v": anchor}, "v")
	require.True(t, ok)
	assert.Equal(t, anchor, got)

	got, ok = Time(Raw{"v": &anchor}, "v")
	require.True(t, ok)
	assert.Equal(t, anchor, got)

	got, ok = Time(Raw{"v": "2026-08-15T10:30:00Z"}, "v")
	require.True(t, ok)
	assert.Equal(t, anchor, got)

	got, ok = Time(Raw{"v": "2026-08-15 10:30:00"}, "v")
	require.True(t, ok)
	assert.Equal(t, anchor, got)

	got, ok = Time(Raw{"v": "2026-08-15"}, "v")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestTimeRejectsMissingAndMalformed(t *testing.T) {
	for name, raw := range map[string]Raw{
		"absent":    {},
		"nil":       {"v": nil},
		"empty":     {"v": "  "},
		"garbage":   {"v": "not-a-date"},
		"zero time": {"v": time.Time{}},
		"nil ptr":   {"v": (*time.Time)(nil)},
		"number":    {"v": 1723716600},
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := Time(raw, "v")
			assert.False(t, ok)
		})
	}
}

func TestSaleFromRaw(t *testing.T) {
	sale := SaleFromRaw(Raw{
		"machine_id":       "vm-1",
		"product_id":       "prod-cola",
		"occurred_at":      "2026-08-20T09:00:00Z",
		"quantity":         "2",
		"unit_price_cents": 250,
		"unit_cost_cents":  nil,
	})

	assert.Equal(t, "vm-1", sale.MachineID)
	assert.Equal(t, int64(2), sale.Quantity)
	assert.Equal(t, int64(250), sale.UnitPriceCents)
	assert.Equal(t, int64(0), sale.UnitCostCents)
	assert.Equal(t, int64(500), sale.RevenueCents())
	assert.True(t, sale.Dated())

	undated := SaleFromRaw(Raw{"machine_id": "vm-1"})
	assert.False(t, undated.Dated())
	assert.Equal(t, UnknownValue, undated.ProductID)
}

func TestSnapshotFromRawDaysOfSupply(t *testing.T) {
	withVelocity := SnapshotFromRaw(Raw{
		"machine_id":     "vm-1",
		"product_id":     "p",
		"slot_id":        "A1",
		"current_qty":    4,
		"par_level":      10,
		"reorder_point":  3,
		"sales_velocity": 2.0,
		"days_of_supply": 2.0,
	})
	assert.Equal(t, 2.0, withVelocity.DaysOfSupply)

	// a missing field means no measurable velocity, not zero supply
	noField := SnapshotFromRaw(Raw{"machine_id": "vm-1", "product_id": "p", "current_qty": 4})
	assert.Equal(t, float64(DaysOfSupplyInfinite), noField.DaysOfSupply)

	explicitZero := SnapshotFromRaw(Raw{"machine_id": "vm-1", "product_id": "p", "days_of_supply": 0})
	assert.Equal(t, float64(0), explicitZero.DaysOfSupply)
}

func TestRunFromRawOptionalFinish(t *testing.T) {
	run := RunFromRaw(Raw{
		"id":          "run-1",
		"route_name":  "Downtown Loop",
		"driver_name": "Sam",
		"started_at":  "2026-08-20T08:00:00Z",
		"finished_at": "2026-08-20T10:30:00Z",
	})
	require.NotNil(t, run.FinishedAt)
	assert.InDelta(t, 2.5, run.DurationHours(), 1e-9)

	open := RunFromRaw(Raw{"id": "run-2", "route_name": "r", "driver_name": "d", "started_at": "2026-08-20T08:00:00Z"})
	assert.Nil(t, open.FinishedAt)
	assert.Equal(t, float64(0), open.DurationHours())
}

func TestRouteRunDurationInvertedRange(t *testing.T) {
	finished := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)
	run := RouteRun{StartedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), FinishedAt: &finished}
	assert.Equal(t, float64(0), run.DurationHours())
}

func TestProspectFromRaw(t *testing.T) {
	p := ProspectFromRaw(Raw{
		"id":                    "pr-1",
		"stage":                 "Closed_Won",
		"created_at":            "2026-07-01T00:00:00Z",
		"won_at":                "2026-07-20T00:00:00Z",
		"estimated_value_cents": 150000,
		"source":                "Referral",
	})
	assert.Equal(t, StageWon, p.Stage)
	require.NotNil(t, p.WonAt)
	assert.Nil(t, p.LostAt)
	assert.Equal(t, int64(150000), p.EstimatedValueCents)

	blank := ProspectFromRaw(Raw{"id": "pr-2"})
	assert.Equal(t, StageNew, blank.Stage)
	assert.True(t, blank.CreatedAt.IsZero())
	assert.Equal(t, UnknownValue, blank.Source)
}

func TestNameLookupResolve(t *testing.T) {
	lookup := NameLookup{"vm-1": "Machine A", "vm-2": ""}

	assert.Equal(t, "Machine A", lookup.Resolve("vm-1"))
	assert.Equal(t, UnknownValue, lookup.Resolve("vm-2"))
	assert.Equal(t, UnknownValue, lookup.Resolve("vm-3"))
	assert.Equal(t, UnknownValue, NameLookup(nil).Resolve("vm-1"))
}
