package aggregate

import (
	"injuryreport/internal/config"
	"injuryreport/internal/normalize"
)

// Dataset is the immutable input shared by every aggregation: the normalized
// rows (already year-filtered when the config asks for it), the
// normalization accounting, and the optional population lookup.
type Dataset struct {
	Rows  []normalize.Row
	Stats normalize.Stats
	Cols  normalize.Columns

	// Bangkok is the province value identifying Bangkok.
	Bangkok string

	// FilterYear is the applied year filter, nil when unfiltered.
	FilterYear *int

	// Pop is nil when no population table was supplied.
	Pop *Population
}

// NewDataset applies the optional global year filter and fixes the dataset
// for the run. rows is not retained when filtering copies it.
func NewDataset(rows []normalize.Row, stats normalize.Stats, cfg config.Report, pop *Population) *Dataset {
	if cfg.YearFilter != nil {
		y := *cfg.YearFilter
		kept := make([]normalize.Row, 0, len(rows))
		for _, r := range rows {
			if r.Year == y {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return &Dataset{
		Rows:       rows,
		Stats:      stats,
		Cols:       stats.Columns,
		Bangkok:    cfg.Geo.BangkokName,
		FilterYear: cfg.YearFilter,
		Pop:        pop,
	}
}

// bangkokRows returns the indexes of rows whose province is Bangkok.
func (ds *Dataset) bangkokRows() []int {
	var out []int
	for i, r := range ds.Rows {
		if r.Province == ds.Bangkok {
			out = append(out, i)
		}
	}
	return out
}

// latestYear returns the configured filter year when set, otherwise the
// maximum event year present; ok is false on an empty dataset.
func (ds *Dataset) latestYear() (int, bool) {
	if ds.FilterYear != nil {
		return *ds.FilterYear, true
	}
	if len(ds.Rows) == 0 {
		return 0, false
	}
	max := ds.Rows[0].Year
	for _, r := range ds.Rows[1:] {
		if r.Year > max {
			max = r.Year
		}
	}
	return max, true
}
