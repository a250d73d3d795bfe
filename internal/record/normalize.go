package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw is one loosely typed row as the external data-access layer returns it.
// Values may be nil, numbers of any width, numeric strings, or timestamps in
// several encodings.
type Raw map[string]any

// Schema declares which fields of a raw row are numeric and which are
// strings, so Normalize knows what to default.
type Schema struct {
	NumericFields []string
	StringFields  []string
}

// Normalize returns a copy of raw with every declared numeric field coerced
// to a non-negative float64 (nil, NaN and negatives become 0) and every
// declared string field populated (empty and nil become the unknown
// sentinel). Undeclared fields pass through unchanged. Normalize never
// panics on malformed input.
func Normalize(raw Raw, schema Schema) Raw {
	out := make(Raw, len(raw)+len(schema.NumericFields)+len(schema.StringFields))
	for k, v := range raw {
		out[k] = v
	}
	for _, field := range schema.NumericFields {
		out[field] = Num(raw, field)
	}
	for _, field := range schema.StringFields {
		out[field] = Str(raw, field)
	}
	return out
}

// Num reads a numeric field, coercing nil, NaN, infinities and negative
// values to 0.
func Num(raw Raw, key string) float64 {
	return clampNumber(coerceNumber(raw[key]))
}

// Int reads a numeric field as a non-negative integer, truncating fractions.
func Int(raw Raw, key string) int64 {
	return int64(Num(raw, key))
}

// Str reads a string field, substituting the unknown sentinel for nil and
// empty values.
func Str(raw Raw, key string) string {
	if v, ok := raw[key].(string); ok {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return UnknownValue
}

// Time reads a timestamp field. The second return is false when the field is
// missing or unparsable; callers exclude such records from date-bucketed
// computations but keep them in date-agnostic totals.
func Time(raw Raw, key string) (time.Time, bool) {
	switch v := raw[key].(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return v.UTC(), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func coerceNumber(v any) float64 {
	switch typed := v.(type) {
	case nil:
		return 0
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint64:
		return float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	case bool:
		if typed {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Quantities, prices and durations are never negative after normalization.
func clampNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SaleFromRaw maps a raw row to a SaleRecord. A missing or malformed
// occurred_at leaves the zero time; see SaleRecord.Dated.
func SaleFromRaw(raw Raw) SaleRecord {
	occurredAt, _ := Time(raw, "occurred_at")
	return SaleRecord{
		MachineID:      Str(raw, "machine_id"),
		ProductID:      Str(raw, "product_id"),
		OccurredAt:     occurredAt,
		Quantity:       Int(raw, "quantity"),
		UnitPriceCents: Int(raw, "unit_price_cents"),
		UnitCostCents:  Int(raw, "unit_cost_cents"),
	}
}

// SnapshotFromRaw maps a raw row to an InventorySnapshot.
func SnapshotFromRaw(raw Raw) InventorySnapshot {
	daysOfSupply := Num(raw, "days_of_supply")
	if _, ok := raw["days_of_supply"]; !ok {
		daysOfSupply = DaysOfSupplyInfinite
	}
	return InventorySnapshot{
		MachineID:     Str(raw, "machine_id"),
		ProductID:     Str(raw, "product_id"),
		SlotID:        Str(raw, "slot_id"),
		CurrentQty:    Int(raw, "current_qty"),
		ParLevel:      Int(raw, "par_level"),
		ReorderPoint:  Int(raw, "reorder_point"),
		SalesVelocity: Num(raw, "sales_velocity"),
		DaysOfSupply:  daysOfSupply,
	}
}

// RunFromRaw maps a raw row to a RouteRun.
func RunFromRaw(raw Raw) RouteRun {
	startedAt, _ := Time(raw, "started_at")
	run := RouteRun{
		ID:         Str(raw, "id"),
		RouteName:  Str(raw, "route_name"),
		DriverName: Str(raw, "driver_name"),
		StartedAt:  startedAt,
	}
	if finishedAt, ok := Time(raw, "finished_at"); ok {
		run.FinishedAt = &finishedAt
	}
	return run
}

// StopFromRaw maps a raw row to a RouteStop.
func StopFromRaw(raw Raw) RouteStop {
	return RouteStop{
		RunID:          Str(raw, "run_id"),
		MachineID:      Str(raw, "machine_id"),
		Miles:          Num(raw, "miles"),
		ServiceMinutes: Num(raw, "service_minutes"),
	}
}

// ProspectFromRaw maps a raw row to a ProspectRecord, normalizing the free
// stage string into the closed Stage set.
func ProspectFromRaw(raw Raw) ProspectRecord {
	createdAt, _ := Time(raw, "created_at")
	prospect := ProspectRecord{
		ID:                  Str(raw, "id"),
		Stage:               NormalizeStage(Str(raw, "stage")),
		CreatedAt:           createdAt,
		EstimatedValueCents: Int(raw, "estimated_value_cents"),
		Source:              Str(raw, "source"),
	}
	if wonAt, ok := Time(raw, "won_at"); ok {
		prospect.WonAt = &wonAt
	}
	if lostAt, ok := Time(raw, "lost_at"); ok {
		prospect.LostAt = &lostAt
	}
	if followUp, ok := Time(raw, "next_follow_up_at"); ok {
		prospect.NextFollowUpAt = &followUp
	}
	return prospect
}
