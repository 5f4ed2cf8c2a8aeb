// Package transformer defines the in-memory record transformation chain
// applied between loading and field normalization.
package transformer

import "injuryreport/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate the
// input slice and records in place.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
