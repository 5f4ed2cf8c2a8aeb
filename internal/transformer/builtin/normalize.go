package builtin

import (
	"strings"

	"injuryreport/pkg/records"
)

// nbspace is U+00A0 NO-BREAK SPACE, common in Thai-sourced spreadsheets.
const nbspace = " "

// Normalize replaces NBSP with ASCII space and trims surrounding whitespace
// on every string value. Non-string values pass through unchanged.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(strings.ReplaceAll(s, nbspace, " "))
				r[k] = s
			}
		}
	}
	return in
}
