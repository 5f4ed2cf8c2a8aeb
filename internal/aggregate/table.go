// Package aggregate computes the named summary tables over the normalized
// record set. Every aggregation is a pure function of an immutable Dataset:
// none mutates the rows, none depends on another aggregation's output, and
// they may run in any order or in parallel.
package aggregate

import (
	"fmt"
	"strings"
)

// Table is one aggregation result: grouping key columns first, in the
// documented order, then measure columns in fixed order. A nil measure cell
// is a missing value (zero-denominator rate, absent population row) and is
// rendered as an empty field downstream, never as zero.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Cell renders one value for delimited output. Missing values render empty;
// floats use a compact form without trailing zeros.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

// bucket accumulates the member rows of one group, remembering first
// encounter order so top-N rankings can break ties stably.
type bucket struct {
	key   []any
	rows  []int // indexes into the dataset rows
	first int   // index of the first member, for stable tie-breaks
}

// grouper builds buckets in first-encounter order.
type grouper struct {
	byKey map[string]*bucket
	order []*bucket
}

func newGrouper() *grouper {
	return &grouper{byKey: make(map[string]*bucket)}
}

// add places row index i into the group identified by key. Key parts are
// printed and joined with a unit separator so adjacent parts cannot collide.
func (g *grouper) add(i int, key ...any) {
	parts := make([]string, len(key))
	for n, k := range key {
		parts[n] = fmt.Sprint(k)
	}
	ks := strings.Join(parts, "\x1f")
	b, ok := g.byKey[ks]
	if !ok {
		b = &bucket{key: key, first: i}
		g.byKey[ks] = b
		g.order = append(g.order, b)
	}
	b.rows = append(b.rows, i)
}

// compareKeys orders two group keys part-by-part: ints numerically, strings
// lexicographically. Parts of differing dynamic type fall back to their
// printed form.
func compareKeys(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareVal(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareVal(a, b any) int {
	ai, aok := a.(int)
	bi, bok := b.(int)
	if aok && bok {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	}
	fa, fb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}
