// Package normalize derives canonical analysis fields from raw surveillance
// records: event dates with Buddhist-calendar correction, period buckets,
// demographic categories, vehicle-cause classes, tri-state risk flags, and
// outcome indicators. Every rule here is total and fail-soft: malformed input
// degrades to an unknown/missing value, never to an error. The single
// exception is the date-presence rule, which drops a record lacking both
// date columns and counts the drop.
package normalize

import (
	"fmt"
	"strings"
	"time"
)

// buddhistEraMin marks the year threshold above which a parsed year is taken
// to be Buddhist Era and corrected by -543.
const buddhistEraMin = 2400

// dateLayout pairs a time layout with whether it carries a clock time.
type dateLayout struct {
	layout  string
	hasTime bool
}

// Day-first and month-first grammars. Go's "2/1/2006" accepts one- and
// two-digit day/month, so each slash form covers both widths. ISO forms are
// unambiguous and shared.
var (
	dayFirstLayouts = []dateLayout{
		{"2/1/2006 15:04:05", true},
		{"2/1/2006 15:04", true},
		{"2/1/2006", false},
		{"2-1-2006 15:04:05", true},
		{"2-1-2006 15:04", true},
		{"2-1-2006", false},
		{"2006-01-02 15:04:05", true},
		{"2006-01-02T15:04:05", true},
		{"2006-01-02 15:04", true},
		{"2006-01-02", false},
	}
	monthFirstLayouts = []dateLayout{
		{"1/2/2006 15:04:05", true},
		{"1/2/2006 15:04", true},
		{"1/2/2006", false},
		{"1-2-2006 15:04:05", true},
		{"1-2-2006 15:04", true},
		{"1-2-2006", false},
		{"2006-01-02 15:04:05", true},
		{"2006-01-02T15:04:05", true},
		{"2006-01-02 15:04", true},
		{"2006-01-02", false},
	}

	hourLayouts = []string{"15:04:05", "15:04", "15.04"}
)

// DateParser parses raw date cells with a fixed grammar and applies the
// per-record Buddhist Era correction.
type DateParser struct {
	layouts []dateLayout
}

// NewDateParser returns a parser using a day-first grammar when dayFirst is
// set, month-first otherwise.
func NewDateParser(dayFirst bool) *DateParser {
	if dayFirst {
		return &DateParser{layouts: dayFirstLayouts}
	}
	return &DateParser{layouts: monthFirstLayouts}
}

// Parse converts one raw cell into a calendar date. hasTime reports whether
// the matched layout carried a clock time; ok is false for unparseable or
// empty input and for corrected dates that cannot be represented.
//
// The Buddhist Era correction is applied here, per record, never as a bulk
// shift over a column: subtracting 543 years can produce an unrepresentable
// date for individual rows (Feb 29 of a BE leap year whose Gregorian twin is
// not a leap year), and one bad row must become null without disturbing the
// rest.
func (p *DateParser) Parse(raw string) (t time.Time, hasTime bool, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, dl := range p.layouts {
		parsed, err := time.Parse(dl.layout, s)
		if err != nil {
			continue
		}
		fixed, ok := fixBuddhistYear(parsed)
		if !ok {
			return time.Time{}, false, false
		}
		return fixed, dl.hasTime, true
	}
	return time.Time{}, false, false
}

// fixBuddhistYear rewrites a Buddhist Era year to Gregorian, preserving
// month, day, and time of day. A date that does not survive the rewrite
// (time.Date would normalize it to a different month/day) reports ok=false.
func fixBuddhistYear(t time.Time) (time.Time, bool) {
	if t.Year() < buddhistEraMin {
		return t, true
	}
	y := t.Year() - 543
	fixed := time.Date(y, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if fixed.Month() != t.Month() || fixed.Day() != t.Day() {
		return time.Time{}, false
	}
	return fixed, true
}

// ParseHour extracts an hour of day (0-23) from a time-of-day cell. Cells
// holding a full timestamp also work; ok is false when nothing matches.
func (p *DateParser) ParseHour(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, layout := range hourLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	if t, hasTime, ok := p.Parse(s); ok && hasTime {
		return t.Hour(), true
	}
	return 0, false
}

// Quarter renders the period bucket label "<year>-Q<n>" for a corrected date.
func Quarter(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), q)
}
