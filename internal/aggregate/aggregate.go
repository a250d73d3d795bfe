// Package aggregate is the grouping core every report builds on: group
// records by a string key and fold named numeric fields per group. It holds
// no business knowledge; thresholds and classification live in the engines
// above it.
package aggregate

import "strings"

// KeySeparator joins composite key parts, e.g. "VM-12·cola".
const KeySeparator = "·"

// CompositeKey joins parts into a single group key.
func CompositeKey(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// SplitKey splits a composite key back into its parts.
func SplitKey(key string) []string {
	return strings.Split(key, KeySeparator)
}

// Op is a reducer applied independently per field.
type Op int

const (
	// Sum folds values by addition.
	Sum Op = iota
	// Count counts records in the group; the field's value function is
	// ignored.
	Count
	// Max keeps the largest value seen.
	Max
	// Last keeps the value of the last record in input order. The other
	// reducers are order independent; Last is only meaningful on
	// pre-ordered input.
	Last
)

// Field names one reduced output per group.
type Field[T any] struct {
	Name  string
	Op    Op
	Value func(T) float64
}

// Group buckets records by keyFn and applies every field's reducer per
// bucket. The result maps group key to field name to reduced value. Empty
// input yields an empty, non-nil map.
func Group[T any](records []T, keyFn func(T) string, fields []Field[T]) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	seen := make(map[string]map[string]bool)

	for _, rec := range records {
		key := keyFn(rec)
		bucket, ok := out[key]
		if !ok {
			bucket = make(map[string]float64, len(fields))
			out[key] = bucket
			seen[key] = make(map[string]bool, len(fields))
		}

		for _, field := range fields {
			switch field.Op {
			case Sum:
				bucket[field.Name] += field.Value(rec)
			case Count:
				bucket[field.Name]++
			case Max:
				v := field.Value(rec)
				if !seen[key][field.Name] || v > bucket[field.Name] {
					bucket[field.Name] = v
					seen[key][field.Name] = true
				}
			case Last:
				bucket[field.Name] = field.Value(rec)
			}
		}
	}

	return out
}

// SumBy is the common single-field case: sum value per group.
func SumBy[T any](records []T, keyFn func(T) string, value func(T) float64) map[string]float64 {
	out := make(map[string]float64)
	for _, rec := range records {
		out[keyFn(rec)] += value(rec)
	}
	return out
}

// CountBy counts records per group.
func CountBy[T any](records []T, keyFn func(T) string) map[string]int {
	out := make(map[string]int)
	for _, rec := range records {
		out[keyFn(rec)]++
	}
	return out
}
