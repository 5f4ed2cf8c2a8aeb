package aggregate

import "sort"

// Aggregation pairs a stable output name with its computation. Run returns
// nil when a dependency column is absent from the input; the caller treats a
// nil table as "aggregation not produced", never as a failure.
type Aggregation struct {
	Name string
	Run  func(*Dataset) *Table
}

// All lists every named aggregation in output order.
func All() []Aggregation {
	return []Aggregation{
		{Name: "national_quarter", Run: NationalQuarter},
		{Name: "sex_year", Run: SexYear},
		{Name: "province_year", Run: ProvinceYear},
		{Name: "bkk_quarter", Run: BangkokQuarter},
		{Name: "mode_mix_bkk_year", Run: ModeMixBangkokYear},
		{Name: "age_sex_bkk_year", Run: AgeSexBangkokYear},
		{Name: "age_bins_year", Run: AgeBinsYear},
		{Name: "hour_of_day", Run: HourOfDay},
		{Name: "bkk_top_districts", Run: BangkokTopDistricts},
		{Name: "head_injury_year", Run: HeadInjuryYear},
		{Name: "top10_provinces", Run: Top10Provinces},
		{Name: "risk_factors_bkk_quarter", Run: RiskFactorsBangkokQuarter},
		{Name: "qa_year_counts", Run: YearCounts},
		{Name: "qa_coverage_province_year", Run: CoverageProvinceYear},
	}
}

// sortedBuckets sorts groups by their key parts ascending.
func sortedBuckets(g *grouper) []*bucket {
	bs := append([]*bucket(nil), g.order...)
	sort.SliceStable(bs, func(i, j int) bool { return compareKeys(bs[i].key, bs[j].key) < 0 })
	return bs
}

// topBuckets sorts groups by case count descending, ties broken by first
// encounter order, and truncates to n.
func topBuckets(g *grouper, n int) []*bucket {
	bs := append([]*bucket(nil), g.order...)
	sort.SliceStable(bs, func(i, j int) bool {
		if len(bs[i].rows) != len(bs[j].rows) {
			return len(bs[i].rows) > len(bs[j].rows)
		}
		return bs[i].first < bs[j].first
	})
	if len(bs) > n {
		bs = bs[:n]
	}
	return bs
}

// NationalQuarter counts cases per quarter across the whole dataset.
func NationalQuarter(ds *Dataset) *Table {
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Quarter)
	}
	t := &Table{Name: "national_quarter", Columns: []string{"quarter", "cases"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], len(b.rows)})
	}
	return t
}

// SexYear counts cases by sex and year. Sex is a total function, so this is
// produced even without a sex column (everything lands in unknown).
func SexYear(ds *Dataset) *Table {
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Sex, r.Year)
	}
	t := &Table{Name: "sex_year", Columns: []string{"sex", "year", "cases"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], b.key[1], len(b.rows)})
	}
	return t
}

// ProvinceYear computes the full measure set per province-year: cases,
// deaths, risk rates where their columns exist, and per-100k when a
// population table was joined. Skipped without a province column.
func ProvinceYear(ds *Dataset) *Table {
	if !ds.Cols.Province {
		return nil
	}
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Province, r.Year)
	}

	t := &Table{Name: "province_year", Columns: []string{"prov", "year", "cases", "deaths"}}
	t.Columns = appendRateColumns(t.Columns, ds)
	if ds.Pop != nil {
		t.Columns = append(t.Columns, "per100k")
	}

	for _, b := range sortedBuckets(g) {
		prov := b.key[0].(string)
		year := b.key[1].(int)
		row := []any{prov, year, len(b.rows), deaths(ds, b.rows)}
		row = appendRates(row, ds, b.rows)
		if ds.Pop != nil {
			pop, ok := ds.Pop.Lookup(prov, year)
			row = append(row, per100k(len(b.rows), pop, ok))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// BangkokQuarter computes cases, deaths, rates, and per-100k for Bangkok by
// year and quarter. Skipped without a province column.
func BangkokQuarter(ds *Dataset) *Table {
	if !ds.Cols.Province {
		return nil
	}
	g := newGrouper()
	for _, i := range ds.bangkokRows() {
		r := ds.Rows[i]
		g.add(i, r.Year, r.Quarter)
	}

	t := &Table{Name: "bkk_quarter", Columns: []string{"year", "quarter", "cases", "deaths"}}
	t.Columns = appendRateColumns(t.Columns, ds)
	if ds.Pop != nil {
		t.Columns = append(t.Columns, "per100k")
	}

	for _, b := range sortedBuckets(g) {
		year := b.key[0].(int)
		row := []any{year, b.key[1], len(b.rows), deaths(ds, b.rows)}
		row = appendRates(row, ds, b.rows)
		if ds.Pop != nil {
			pop, ok := ds.Pop.Lookup(ds.Bangkok, year)
			row = append(row, per100k(len(b.rows), pop, ok))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ModeMixBangkokYear computes the vehicle-type mix within Bangkok per year,
// with each group's share of that year's total. Shares within a year sum
// to 1. Skipped without province or cause-code columns.
func ModeMixBangkokYear(ds *Dataset) *Table {
	if !ds.Cols.Province || !ds.Cols.ICD {
		return nil
	}
	g := newGrouper()
	yearTotals := map[int]int{}
	for _, i := range ds.bangkokRows() {
		r := ds.Rows[i]
		g.add(i, r.Year, r.Vehicle)
		yearTotals[r.Year]++
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "mode_mix_bkk_year", Columns: []string{"year", "vehicle_type", "cases", "share_of_total"}}
	for _, b := range sortedBuckets(g) {
		year := b.key[0].(int)
		var share any
		if total := yearTotals[year]; total > 0 {
			share = float64(len(b.rows)) / float64(total)
		}
		t.Rows = append(t.Rows, []any{year, b.key[1], len(b.rows), share})
	}
	return t
}

// AgeSexBangkokYear breaks Bangkok cases down by year, age bracket, and sex.
// A missing age bracket groups under the empty label. Skipped without a
// province column.
func AgeSexBangkokYear(ds *Dataset) *Table {
	if !ds.Cols.Province {
		return nil
	}
	g := newGrouper()
	for _, i := range ds.bangkokRows() {
		r := ds.Rows[i]
		g.add(i, r.Year, r.AgeGroup, r.Sex)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "age_sex_bkk_year", Columns: []string{"year", "age_group", "sex", "cases"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], b.key[1], b.key[2], len(b.rows)})
	}
	return t
}

// AgeBinsYear counts cases per age bracket and year. Skipped without an age
// column.
func AgeBinsYear(ds *Dataset) *Table {
	if !ds.Cols.Age {
		return nil
	}
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.AgeGroup, r.Year)
	}
	t := &Table{Name: "age_bins_year", Columns: []string{"age_group", "year", "cases"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], b.key[1], len(b.rows)})
	}
	return t
}

// HourOfDay counts cases by hour of day and year. The event timestamp's
// hour is primary; when more than half the rows lack one, the configured
// time-of-day column fills the gaps. Rows with no hour from either source
// are excluded.
func HourOfDay(ds *Dataset) *Table {
	missing := 0
	for _, r := range ds.Rows {
		if r.Hour < 0 {
			missing++
		}
	}
	useAlt := len(ds.Rows) > 0 && missing*2 > len(ds.Rows)

	g := newGrouper()
	for i, r := range ds.Rows {
		h := r.Hour
		if h < 0 && useAlt {
			h = r.AltHour
		}
		if h < 0 {
			continue
		}
		g.add(i, h, r.Year)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "hour_of_day", Columns: []string{"hour", "year", "cases"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], b.key[1], len(b.rows)})
	}
	return t
}

// BangkokTopDistricts ranks Bangkok districts by case count, descending,
// keeping the top 20. Equal counts preserve first-encounter order. Skipped
// without province and district columns.
func BangkokTopDistricts(ds *Dataset) *Table {
	if !ds.Cols.Province || !ds.Cols.District {
		return nil
	}
	g := newGrouper()
	for _, i := range ds.bangkokRows() {
		g.add(i, ds.Rows[i].District)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "bkk_top_districts", Columns: []string{"district", "cases"}}
	for _, b := range topBuckets(g, 20) {
		t.Rows = append(t.Rows, []any{b.key[0], len(b.rows)})
	}
	return t
}

// HeadInjuryYear reports, per year, the total cases, head-injury cases, and
// the head-injury share rounded to 4 decimals. Skipped without the
// head-injury column.
func HeadInjuryYear(ds *Dataset) *Table {
	if !ds.Cols.HeadInjury {
		return nil
	}
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Year)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "head_injury_year", Columns: []string{"year", "total_cases", "head_injury_cases", "head_injury_share"}}
	for _, b := range sortedBuckets(g) {
		hi := 0
		for _, i := range b.rows {
			if ds.Rows[i].HeadInjury {
				hi++
			}
		}
		var share any
		if len(b.rows) > 0 {
			share = round(float64(hi)/float64(len(b.rows)), 4)
		}
		t.Rows = append(t.Rows, []any{b.key[0], len(b.rows), hi, share})
	}
	return t
}

// Top10Provinces ranks provinces by case count in the filter year, or the
// latest year present, keeping the top 10 with stable ties. Skipped without
// a province column.
func Top10Provinces(ds *Dataset) *Table {
	if !ds.Cols.Province {
		return nil
	}
	year, ok := ds.latestYear()
	if !ok {
		return nil
	}
	g := newGrouper()
	for i, r := range ds.Rows {
		if r.Year == year {
			g.add(i, r.Province)
		}
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "top10_provinces", Columns: []string{"prov", "year", "cases"}}
	for _, b := range topBuckets(g, 10) {
		t.Rows = append(t.Rows, []any{b.key[0], year, len(b.rows)})
	}
	return t
}

// RiskFactorsBangkokQuarter tracks the risk rates for Bangkok by year and
// quarter. Without any risk column it still reports cases per quarter.
// Skipped without a province column.
func RiskFactorsBangkokQuarter(ds *Dataset) *Table {
	if !ds.Cols.Province {
		return nil
	}
	g := newGrouper()
	for _, i := range ds.bangkokRows() {
		r := ds.Rows[i]
		g.add(i, r.Year, r.Quarter)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "risk_factors_bkk_quarter", Columns: []string{"year", "quarter", "cases"}}
	t.Columns = appendRateColumns(t.Columns, ds)

	for _, b := range sortedBuckets(g) {
		row := []any{b.key[0], b.key[1], len(b.rows)}
		row = appendRates(row, ds, b.rows)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// YearCounts reports retained rows per event year, a QA signal.
func YearCounts(ds *Dataset) *Table {
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Year)
	}
	t := &Table{Name: "qa_year_counts", Columns: []string{"year", "rows"}}
	for _, b := range sortedBuckets(g) {
		t.Rows = append(t.Rows, []any{b.key[0], len(b.rows)})
	}
	return t
}

// CoverageProvinceYear reports, per province-year, the retained row count
// against the raw row count for that province (including rows dropped for
// missing dates), with the share rounded to 4 decimals. It reads the same
// normalized record set as every business aggregation; only the raw
// denominators come from the pre-normalization accounting. Skipped without
// a province column.
func CoverageProvinceYear(ds *Dataset) *Table {
	if !ds.Cols.Province || ds.Stats.RawByProvince == nil {
		return nil
	}
	g := newGrouper()
	for i, r := range ds.Rows {
		g.add(i, r.Province, r.Year)
	}
	if len(g.order) == 0 {
		return nil
	}

	t := &Table{Name: "qa_coverage_province_year", Columns: []string{"prov", "year", "rows_parsed", "rows_raw", "share_parsed_vs_prov_total"}}
	for _, b := range sortedBuckets(g) {
		prov := b.key[0].(string)
		raw := ds.Stats.RawByProvince[prov]
		var share any
		if raw > 0 {
			share = round(float64(len(b.rows))/float64(raw), 4)
		}
		t.Rows = append(t.Rows, []any{prov, b.key[1], len(b.rows), raw, share})
	}
	return t
}

// appendRateColumns appends the headers of the risk measures whose source
// columns exist, in fixed order.
func appendRateColumns(cols []string, ds *Dataset) []string {
	if ds.Cols.Alcohol {
		cols = append(cols, "alcohol_share")
	}
	if ds.Cols.Helmet {
		cols = append(cols, "helmet_rate")
	}
	if ds.Cols.Seatbelt {
		cols = append(cols, "seatbelt_rate")
	}
	return cols
}

// appendRates appends the risk measure values matching appendRateColumns.
func appendRates(row []any, ds *Dataset, members []int) []any {
	if ds.Cols.Alcohol {
		row = append(row, alcoholShare(ds, members))
	}
	if ds.Cols.Helmet {
		row = append(row, helmetRate(ds, members))
	}
	if ds.Cols.Seatbelt {
		row = append(row, seatbeltRate(ds, members))
	}
	return row
}
