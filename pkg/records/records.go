// Package records defines the row representation shared by the loader,
// the transformer chain, and the field normalizer.
//
// A Record is a loosely typed map of column name to raw value. The input
// schema is not fixed: optional columns are probed at normalization time via
// the typed accessors, and a missing column simply yields the zero value plus
// ok=false rather than an error.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one row of the source table keyed by canonical column name.
type Record map[string]any

// Has reports whether the column exists in the record, even if its value is
// nil or empty.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value for key rendered as a string. Missing keys and
// nil values return ("", false). Non-string values are formatted with fmt,
// so numeric CSV cells that were coerced earlier still round-trip.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Float returns the value for key coerced to float64. Strings are parsed
// after trimming; empty strings and unparseable values return (0, false).
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
