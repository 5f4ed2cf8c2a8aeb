// DeDup collapses duplicate records by a configured business key before the
// field normalizer runs. Surveillance extracts are occasionally re-exported
// with overlapping row ranges; collapsing them keeps every downstream case
// count honest.
//
// Keys: a record's key is the xxh3 hash of its key-field values joined with
// a separator byte (nil -> NUL). Records missing any key field are outside
// the de-dup domain and pass through unchanged, after the keyed winners.
package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"injuryreport/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the business key.
	Keys []string

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last" (default).
	Policy string

	// Removed, after Apply, holds the number of keyed records that were
	// collapsed away. It resets on each Apply call.
	Removed int
}

// Apply executes the de-duplication and returns a new slice containing only
// the winning record for each key. Winners appear in the order of the
// position backing them (first occurrence for keep-first, winning line for
// keep-last); non-keyed records follow in original order.
func (d *DeDup) Apply(in []records.Record) []records.Record {
	d.Removed = 0
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		rec   records.Record
		index int
	}

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok {
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			switch t := v.(type) {
			case nil:
				b.WriteByte('\x00')
			case string:
				b.WriteString(t)
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
		return xxh3.HashString(b.String()), true
	}

	winners := make(map[uint64]slot, len(in))
	keyed := 0
	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		keyed++
		switch policy {
		case "keep-first":
			if _, exists := winners[key]; !exists {
				winners[key] = slot{rec: r, index: i}
			}
		default: // keep-last
			winners[key] = slot{rec: r, index: i}
		}
	}
	d.Removed = keyed - len(winners)

	indexes := make([]int, 0, len(winners))
	byIndex := make(map[int]records.Record, len(winners))
	for _, s := range winners {
		indexes = append(indexes, s.index)
		byIndex[s.index] = s.rec
	}
	sort.Ints(indexes)

	out := make([]records.Record, 0, len(winners))
	for _, idx := range indexes {
		out = append(out, byIndex[idx])
	}
	for _, r := range in {
		if _, ok := keyOf(r); !ok {
			out = append(out, r)
		}
	}
	return out
}
