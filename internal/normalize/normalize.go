package normalize

import (
	"strings"
	"time"

	"injuryreport/internal/config"
	"injuryreport/pkg/records"
)

// Row is one normalized record. Only records with a parseable event date
// become Rows; everything else about a Row is total-function output and
// present for every retained record (with explicit unknown/missing values).
type Row struct {
	Date    time.Time
	Year    int
	Quarter string

	// Hour is the clock hour from the event timestamp, or -1 when the
	// matched date layout carried no time component. AltHour is the hour
	// parsed from the configured time-fallback column, or -1.
	Hour    int
	AltHour int

	Sex      string
	AgeGroup string // "" when age is missing or out of scheme
	Province string
	District string
	Vehicle  string

	Alcohol  Tri
	Helmet   Tri
	Seatbelt Tri

	Death      bool
	HeadInjury bool
}

// Columns reports which optional source columns were present in the input,
// deciding which aggregations can be produced.
type Columns struct {
	Province   bool
	District   bool
	Sex        bool
	Age        bool
	ICD        bool
	Alcohol    bool
	Helmet     bool
	Seatbelt   bool
	HeadInjury bool

	// DistrictCol is the first district candidate found, when District.
	DistrictCol string
}

// Stats carries the auditable accounting for one normalization pass.
type Stats struct {
	// RawRows is the number of raw data rows that entered normalization.
	RawRows int

	// Parsed is the number of rows retained (event date present).
	Parsed int

	// Dropped is RawRows - Parsed: rows lacking both date fields. This is
	// the only row-elimination rule in the pipeline.
	Dropped int

	// DuplicatesRemoved is filled by the caller when a dedup pass ran.
	DuplicatesRemoved int

	// RawByProvince counts all raw rows per trimmed province value,
	// including rows that were later dropped. Empty when the province
	// column is absent.
	RawByProvince map[string]int

	// Derived lists the derived columns available after normalization,
	// for the QA summary.
	Derived []string

	Columns Columns
}

// Normalizer applies the full field-derivation rule set for one report
// config. It is safe to reuse across inputs but not concurrently.
type Normalizer struct {
	cfg   config.Report
	dates *DateParser
	ages  *AgeBinner
	risks RiskRule
	death DeathRule
}

// New builds a Normalizer from a defaulted config.
func New(cfg config.Report) *Normalizer {
	return &Normalizer{
		cfg:   cfg,
		dates: NewDateParser(cfg.Input.DayFirst),
		ages:  NewAgeBinner(cfg.Demographics.AgeBins, cfg.Demographics.AgeLabels),
		risks: NewRiskRule(cfg.Risks.ValuesYes, cfg.Risks.ValuesNo, cfg.Risks.ValuesUnknown),
		death: NewDeathRule(cfg.Outcomes.DeathTokens),
	}
}

// Run normalizes every record. cols is the canonical header from the loader;
// it decides which optional derivations are attempted at all.
func (n *Normalizer) Run(recs []records.Record, cols []string) ([]Row, Stats) {
	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[c] = struct{}{}
	}
	has := func(name string) bool {
		if name == "" {
			return false
		}
		_, ok := present[name]
		return ok
	}

	cc := Columns{
		Province:   has(n.cfg.Geo.Province),
		Sex:        has(n.cfg.Demographics.Sex),
		Age:        has(n.cfg.Demographics.Age),
		ICD:        has(n.cfg.ICD10.Column),
		Alcohol:    has(n.cfg.Risks.Alcohol),
		Helmet:     has(n.cfg.Risks.Helmet),
		Seatbelt:   has(n.cfg.Risks.Seatbelt),
		HeadInjury: has(n.cfg.Outcomes.HeadInjury),
	}
	for _, cand := range n.cfg.Geo.DistrictCandidates {
		if has(cand) {
			cc.District = true
			cc.DistrictCol = cand
			break
		}
	}
	deathFields := make([]string, 0, len(n.cfg.Outcomes.DeathFields))
	for _, f := range n.cfg.Outcomes.DeathFields {
		if has(f) {
			deathFields = append(deathFields, f)
		}
	}

	stats := Stats{Columns: cc}
	if cc.Province {
		stats.RawByProvince = make(map[string]int)
	}

	hiToken := strings.ToLower(n.cfg.Outcomes.HeadInjuryToken)

	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		stats.RawRows++

		var prov string
		if cc.Province {
			prov, _ = rec.String(n.cfg.Geo.Province)
			prov = strings.TrimSpace(prov)
			stats.RawByProvince[prov]++
		}

		date, hasTime, ok := n.eventDate(rec)
		if !ok {
			stats.Dropped++
			continue
		}

		row := Row{
			Date:     date,
			Year:     date.Year(),
			Quarter:  Quarter(date),
			Hour:     -1,
			AltHour:  -1,
			Sex:      SexUnknown,
			Province: prov,
			Vehicle:  VehicleUnspecified,
		}
		if hasTime {
			row.Hour = date.Hour()
		}
		if n.cfg.Date.TimeFallback != "" && has(n.cfg.Date.TimeFallback) {
			if s, ok := rec.String(n.cfg.Date.TimeFallback); ok {
				if h, ok := n.dates.ParseHour(s); ok {
					row.AltHour = h
				}
			}
		}

		if cc.Sex {
			s, _ := rec.String(n.cfg.Demographics.Sex)
			row.Sex = NormalizeSex(s)
		}
		if cc.Age {
			if a, ok := rec.Float(n.cfg.Demographics.Age); ok {
				if label, ok := n.ages.Bin(a); ok {
					row.AgeGroup = label
				}
			}
		}
		if cc.District {
			d, _ := rec.String(cc.DistrictCol)
			row.District = strings.TrimSpace(d)
		}
		if cc.ICD {
			code, _ := rec.String(n.cfg.ICD10.Column)
			row.Vehicle = VehicleType(code)
		}
		if cc.Alcohol {
			s, _ := rec.String(n.cfg.Risks.Alcohol)
			row.Alcohol = n.risks.Classify(s)
		}
		if cc.Helmet {
			s, _ := rec.String(n.cfg.Risks.Helmet)
			row.Helmet = n.risks.Classify(s)
		}
		if cc.Seatbelt {
			s, _ := rec.String(n.cfg.Risks.Seatbelt)
			row.Seatbelt = n.risks.Classify(s)
		}
		for _, f := range deathFields {
			s, _ := rec.String(f)
			if n.death.Hit(s) {
				row.Death = true
				break
			}
		}
		if cc.HeadInjury {
			s, _ := rec.String(n.cfg.Outcomes.HeadInjury)
			row.HeadInjury = strings.ToLower(strings.TrimSpace(s)) == hiToken
		}

		rows = append(rows, row)
	}

	stats.Parsed = len(rows)
	stats.Derived = derivedColumns(cc)
	return rows, stats
}

// eventDate combines the primary and fallback date columns for one record.
func (n *Normalizer) eventDate(rec records.Record) (time.Time, bool, bool) {
	if s, ok := rec.String(n.cfg.Date.Primary); ok {
		if t, hasTime, ok := n.dates.Parse(s); ok {
			return t, hasTime, true
		}
	}
	if n.cfg.Date.Fallback != "" {
		if s, ok := rec.String(n.cfg.Date.Fallback); ok {
			if t, hasTime, ok := n.dates.Parse(s); ok {
				return t, hasTime, true
			}
		}
	}
	return time.Time{}, false, false
}

// derivedColumns lists the derived fields available after normalization.
func derivedColumns(cc Columns) []string {
	out := []string{"event_date", "year", "quarter"}
	if cc.Province {
		out = append(out, "prov")
	}
	if cc.District {
		out = append(out, "district")
	}
	if cc.Sex {
		out = append(out, "sex")
	}
	if cc.Age {
		out = append(out, "age_group")
	}
	if cc.ICD {
		out = append(out, "vehicle_type")
	}
	if cc.Alcohol {
		out = append(out, "alcohol_flag")
	}
	if cc.Helmet {
		out = append(out, "helmet_flag")
	}
	if cc.Seatbelt {
		out = append(out, "seatbelt_flag")
	}
	out = append(out, "death_flag")
	if cc.HeadInjury {
		out = append(out, "head_injury")
	}
	return out
}
