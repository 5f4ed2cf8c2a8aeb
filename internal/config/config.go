// Package config defines the canonical, JSON-serializable configuration model
// for the injury report generator. It is intentionally small, explicit, and
// dependency-free so that report configs can be loaded from disk and passed
// through the program without additional glue code.
//
// The model is a mapping from logical roles to physical column names: the
// core never hard-codes a column name, it asks the config which column plays
// the "primary date" role, the "province" role, and so on. Columns named here
// but absent from the input degrade per the fail-soft rules in the normalize
// and aggregate packages; they are never a decode error.
//
// Example (trimmed):
//
//	{
//	  "job":   "injury_2018",
//	  "input": { "path": "is2018.csv", "csv_encoding_candidates": ["utf-8","windows-874"], "dayfirst": true },
//	  "date":  { "primary": "adate", "fallback": "hdate", "time_fallback": "atime" },
//	  "geo":   { "province": "prov" },
//	  "icd10": { "column": "icdcause" },
//	  "outputs": { "dir": "outputs" }
//	}
package config

import "encoding/json"

// Report describes one full report run. It is the top-level object decoded
// from a report config file.
type Report struct {
	// Job is the logical run name, used for metrics labels and log lines.
	Job string `json:"job"`

	Input        Input        `json:"input"`
	Date         Date         `json:"date"`
	Geo          Geo          `json:"geo"`
	Demographics Demographics `json:"demographics"`
	ICD10        ICD10        `json:"icd10"`
	Risks        Risks        `json:"risks"`
	Outcomes     Outcomes     `json:"outcomes"`

	// Population optionally points at a province-year population table used
	// to compute per-100k rates.
	Population Population `json:"population"`

	// DeDup optionally collapses duplicate input rows by a business key
	// before normalization.
	DeDup DeDup `json:"dedup"`

	// YearFilter, when non-nil, restricts every aggregation to records whose
	// corrected event year equals the given value. It is the single switch
	// between the filtered and unfiltered variants of the report.
	YearFilter *int `json:"year_filter"`

	Outputs Outputs `json:"outputs"`

	// Storage optionally persists each produced result table to a database
	// sink in addition to the delimited files.
	Storage Storage `json:"storage"`

	Runtime Runtime `json:"runtime"`
}

// Input configures the delimited source file and how to read it.
type Input struct {
	// Path is the local filesystem path to the input table.
	Path string `json:"path"`

	// EncodingCandidates lists text encodings to try in order until one
	// yields a parseable table (e.g. "utf-8", "windows-874", "windows-1252").
	// Empty means UTF-8 only.
	EncodingCandidates []string `json:"csv_encoding_candidates"`

	// Delimiter is the field separator; empty means ','.
	Delimiter string `json:"delimiter"`

	// DayFirst selects a day-first date grammar (31/12/2018 over 12/31/2018).
	DayFirst bool `json:"dayfirst"`

	// HeaderMap maps source header names to canonical column names.
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// Date names the date-bearing columns.
type Date struct {
	// Primary is the main event-date column.
	Primary string `json:"primary"`

	// Fallback, when set, supplies the event date for rows whose primary
	// value is unparseable or missing.
	Fallback string `json:"fallback"`

	// TimeFallback, when set, names a time-of-day column used for the
	// hour-of-day aggregation when the event timestamps carry no clock time.
	TimeFallback string `json:"time_fallback"`
}

// Geo names the geography columns.
type Geo struct {
	// Province is the province column; province-keyed aggregations are
	// skipped when it is absent from the input.
	Province string `json:"province"`

	// BangkokName is the province value identifying Bangkok. Empty means the
	// Thai name กรุงเทพมหานคร.
	BangkokName string `json:"bangkok_name"`

	// DistrictCandidates lists column names probed, in order, for the
	// Bangkok district breakdown.
	DistrictCandidates []string `json:"district_candidates"`
}

// Demographics names the sex and age columns and the age bracket scheme.
type Demographics struct {
	Sex string `json:"sex"`
	Age string `json:"age"`

	// AgeBins are right-closed bin edges; AgeLabels has len(AgeBins)-1
	// entries. Empty means the default 0-14/15-24/25-44/45-64/65+ scheme.
	AgeBins   []float64 `json:"age_bins"`
	AgeLabels []string  `json:"age_labels"`
}

// ICD10 names the external-cause code column.
type ICD10 struct {
	Column string `json:"column"`
}

// Risks names the risk-factor columns and the token sets that classify their
// free-text values into yes/no/unknown.
type Risks struct {
	Alcohol  string `json:"alcohol"`
	Helmet   string `json:"helmet"`
	Seatbelt string `json:"seatbelt"`

	ValuesYes     []string `json:"values_yes"`
	ValuesNo      []string `json:"values_no"`
	ValuesUnknown []string `json:"values_unknown"`
}

// Outcomes configures death detection and the head-injury column.
type Outcomes struct {
	// DeathFields lists columns scanned for death tokens; a record is a
	// death when any listed column contains any token (case-insensitive
	// substring match). Columns absent from the input are ignored.
	DeathFields []string `json:"death_fields"`
	DeathTokens []string `json:"death_tokens"`

	// HeadInjury names the head-injury flag column; HeadInjuryToken is the
	// value marking a head injury (empty means "hi").
	HeadInjury      string `json:"head_injury"`
	HeadInjuryToken string `json:"head_injury_token"`
}

// Population configures the optional province-year population join.
type Population struct {
	Enabled bool   `json:"enabled"`
	File    string `json:"file"`
	ProvCol string `json:"prov_col"`
	YearCol string `json:"year_col"`
	PopCol  string `json:"pop_col"`
}

// DeDup configures optional input de-duplication.
type DeDup struct {
	// Keys are the columns forming the business key; empty disables dedup.
	Keys []string `json:"keys"`

	// Policy selects the winner among duplicates: "keep-first" or
	// "keep-last" (default).
	Policy string `json:"policy"`
}

// Outputs configures where result tables, figures, and the QA summary land.
type Outputs struct {
	// Dir receives one delimited file per produced aggregation plus the QA
	// summary. Empty means "outputs".
	Dir string `json:"dir"`

	// FiguresDir receives rendered charts. Empty means Dir/figures.
	FiguresDir string `json:"figures_dir"`

	// Charts toggles chart rendering.
	Charts bool `json:"charts"`
}

// Storage selects the optional database sink for result tables.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", or empty for none.
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the connection string (file path or file: URI for SQLite,
	// postgresql:// URL for Postgres).
	DSN string `json:"dsn"`

	// TablePrefix is prepended to each aggregation name to form the
	// destination table name.
	TablePrefix string `json:"table_prefix"`
}

// Runtime controls concurrency for the aggregation stage.
type Runtime struct {
	// AggregationWorkers bounds the number of aggregations computed in
	// parallel; <= 0 means sequential.
	AggregationWorkers int `json:"aggregation_workers"`
}

// Marshal renders a Report as indented JSON, for -validate output and tests.
func Marshal(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Defaults applied by ApplyDefaults.
const (
	DefaultBangkokName     = "กรุงเทพมหานคร"
	DefaultHeadInjuryToken = "hi"
	DefaultOutputDir       = "outputs"
)

// ApplyDefaults fills zero-valued fields with the documented defaults.
// It mutates r in place and is safe to call on an already-defaulted value.
func ApplyDefaults(r *Report) {
	if len(r.Input.EncodingCandidates) == 0 {
		r.Input.EncodingCandidates = []string{"utf-8"}
	}
	if r.Geo.BangkokName == "" {
		r.Geo.BangkokName = DefaultBangkokName
	}
	if len(r.Geo.DistrictCandidates) == 0 {
		r.Geo.DistrictCandidates = []string{"aampur", "amphoe", "district", "ampur"}
	}
	if len(r.Demographics.AgeBins) == 0 {
		r.Demographics.AgeBins = []float64{0, 14, 24, 44, 64, 200}
		r.Demographics.AgeLabels = []string{"0-14", "15-24", "25-44", "45-64", "65+"}
	}
	if r.Outcomes.HeadInjuryToken == "" {
		r.Outcomes.HeadInjuryToken = DefaultHeadInjuryToken
	}
	if r.Outputs.Dir == "" {
		r.Outputs.Dir = DefaultOutputDir
	}
	if r.Outputs.FiguresDir == "" {
		r.Outputs.FiguresDir = r.Outputs.Dir + "/figures"
	}
}
