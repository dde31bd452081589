// Package weave implements the weave query compiler and execution engine: a
// linear pipeline of SEED, PIVOT and JOIN stages over heterogeneous record
// sources, related by field-level equality/inequality conditions.
package weave

import "time"

// Value is anything that can sit in a Record: string, number, bool, nested
// Record, list, or time.Time. Interface{} with direct Go types, same spirit
// as the teacher's datalog.Value.
type Value interface{}

// Record is a map from string keys to values. Field names may be dotted
// paths (e.g. "a.b.c") referring to nested access via field.Accessor.
type Record map[string]Value

// Clone returns a shallow copy of r; nested maps/slices are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CompareValues compares two proxied field values for equality purposes.
// Unlike the teacher's ordering comparator, the core algebra only needs
// equality (EQ/NE, §3), but time.Time and numeric cross-type comparisons
// still need normalizing before a plain == would work.
func CompareValues(left, right Value) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if lt, ok := left.(time.Time); ok {
		if rt, ok := right.(time.Time); ok {
			return lt.Equal(rt)
		}
		return false
	}
	if ln, ok := toFloat(left); ok {
		if rn, ok := toFloat(right); ok {
			return ln == rn
		}
	}
	return left == right
}

func toFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
