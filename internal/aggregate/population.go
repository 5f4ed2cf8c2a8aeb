package aggregate

import (
	"strings"

	"injuryreport/internal/config"
	"injuryreport/pkg/records"
)

type popKey struct {
	prov string
	year int
}

// Population is the optional province-year population lookup used for
// per-100k rates. A missing (province, year) pair yields a missing rate for
// that group, never zero.
type Population struct {
	byKey map[popKey]float64
}

// NewPopulation indexes a loaded population table by the configured province
// and year columns. Rows with a non-numeric year or population are ignored.
func NewPopulation(recs []records.Record, cfg config.Population) *Population {
	p := &Population{byKey: make(map[popKey]float64, len(recs))}
	for _, rec := range recs {
		prov, ok := rec.String(cfg.ProvCol)
		if !ok {
			continue
		}
		yearF, ok := rec.Float(cfg.YearCol)
		if !ok {
			continue
		}
		pop, ok := rec.Float(cfg.PopCol)
		if !ok || pop <= 0 {
			continue
		}
		p.byKey[popKey{prov: strings.TrimSpace(prov), year: int(yearF)}] = pop
	}
	return p
}

// Lookup returns the population for a province-year, ok=false when absent.
func (p *Population) Lookup(prov string, year int) (float64, bool) {
	if p == nil {
		return 0, false
	}
	pop, ok := p.byKey[popKey{prov: prov, year: year}]
	return pop, ok
}
