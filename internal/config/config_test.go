package config

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestDecodeReport checks that a representative report config decodes into
// the typed model with the expected role-to-column mapping.
func TestDecodeReport(t *testing.T) {
	t.Parallel()

	src := `{
	  "job": "injury_2018",
	  "input": {
	    "path": "is2018.csv",
	    "csv_encoding_candidates": ["utf-8", "windows-874"],
	    "dayfirst": true,
	    "delimiter": ","
	  },
	  "date": { "primary": "adate", "fallback": "hdate", "time_fallback": "atime" },
	  "geo": { "province": "prov" },
	  "demographics": { "sex": "sex", "age": "age" },
	  "icd10": { "column": "icdcause" },
	  "risks": {
	    "alcohol": "risk1",
	    "values_yes": ["yes", "ดื่ม"],
	    "values_no": ["no", "ไม่ดื่ม"],
	    "values_unknown": ["unk", "ไม่ทราบ"]
	  },
	  "outcomes": { "death_fields": ["staer"], "death_tokens": ["dead", "เสียชีวิต"] },
	  "year_filter": 2018,
	  "outputs": { "dir": "out", "charts": true }
	}`

	var r Report
	if err := json.Unmarshal([]byte(src), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Job != "injury_2018" {
		t.Errorf("Job = %q, want injury_2018", r.Job)
	}
	if r.Date.Primary != "adate" || r.Date.Fallback != "hdate" {
		t.Errorf("Date = %+v, want primary=adate fallback=hdate", r.Date)
	}
	if !r.Input.DayFirst {
		t.Errorf("Input.DayFirst = false, want true")
	}
	if r.YearFilter == nil || *r.YearFilter != 2018 {
		t.Errorf("YearFilter = %v, want 2018", r.YearFilter)
	}
	if got := len(r.Input.EncodingCandidates); got != 2 {
		t.Errorf("encoding candidates = %d, want 2", got)
	}
}

// TestApplyDefaults verifies the documented zero-value fallbacks, including
// the default age bracket scheme and the derived figures directory.
func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var r Report
	r.Outputs.Dir = "reports"
	ApplyDefaults(&r)

	if got := r.Geo.BangkokName; got != DefaultBangkokName {
		t.Errorf("BangkokName = %q, want default", got)
	}
	if len(r.Demographics.AgeBins) != 6 || len(r.Demographics.AgeLabels) != 5 {
		t.Errorf("age scheme = %v / %v, want 6 edges and 5 labels",
			r.Demographics.AgeBins, r.Demographics.AgeLabels)
	}
	if r.Outputs.FiguresDir != "reports/figures" {
		t.Errorf("FiguresDir = %q, want reports/figures", r.Outputs.FiguresDir)
	}
	if len(r.Input.EncodingCandidates) != 1 || r.Input.EncodingCandidates[0] != "utf-8" {
		t.Errorf("EncodingCandidates = %v, want [utf-8]", r.Input.EncodingCandidates)
	}

	// Idempotent on an already-defaulted value.
	again := r
	ApplyDefaults(&again)
	if again.Outputs.FiguresDir != r.Outputs.FiguresDir {
		t.Errorf("ApplyDefaults not idempotent: %q vs %q", again.Outputs.FiguresDir, r.Outputs.FiguresDir)
	}
}

// TestValidateReport exercises the validator over representative good and
// bad configs and checks for expected issue paths and severities.
func TestValidateReport(t *testing.T) {
	t.Parallel()

	base := func() Report {
		var r Report
		r.Job = "j"
		r.Input.Path = "in.csv"
		r.Date.Primary = "adate"
		r.Date.Fallback = "hdate"
		return r
	}

	tests := []struct {
		name      string
		mutate    func(*Report)
		wantPath  string
		wantSev   IssueSeverity
		wantClean bool
	}{
		{
			name:      "valid_minimal",
			mutate:    func(r *Report) {},
			wantClean: true,
		},
		{
			name:     "missing_input_path",
			mutate:   func(r *Report) { r.Input.Path = "" },
			wantPath: "input.path",
			wantSev:  SeverityError,
		},
		{
			name:     "missing_primary_date",
			mutate:   func(r *Report) { r.Date.Primary = "" },
			wantPath: "date.primary",
			wantSev:  SeverityError,
		},
		{
			name:     "no_fallback_is_warning",
			mutate:   func(r *Report) { r.Date.Fallback = "" },
			wantPath: "date.fallback",
			wantSev:  SeverityWarning,
		},
		{
			name: "bad_age_bins",
			mutate: func(r *Report) {
				r.Demographics.AgeBins = []float64{0, 14, 24}
				r.Demographics.AgeLabels = []string{"0-14"}
			},
			wantPath: "demographics.age_bins",
			wantSev:  SeverityError,
		},
		{
			name: "non_increasing_age_bins",
			mutate: func(r *Report) {
				r.Demographics.AgeBins = []float64{0, 24, 14}
				r.Demographics.AgeLabels = []string{"a", "b"}
			},
			wantPath: "demographics.age_bins",
			wantSev:  SeverityError,
		},
		{
			name:     "population_enabled_without_file",
			mutate:   func(r *Report) { r.Population.Enabled = true },
			wantPath: "population.file",
			wantSev:  SeverityError,
		},
		{
			name: "unknown_storage_kind",
			mutate: func(r *Report) {
				r.Storage.Kind = "mongodb"
				r.Storage.DB.DSN = "x"
			},
			wantPath: "storage.kind",
			wantSev:  SeverityError,
		},
		{
			name: "bad_dedup_policy",
			mutate: func(r *Report) {
				r.DeDup.Keys = []string{"id"}
				r.DeDup.Policy = "most-complete"
			},
			wantPath: "dedup.policy",
			wantSev:  SeverityError,
		},
		{
			name:     "multichar_delimiter",
			mutate:   func(r *Report) { r.Input.Delimiter = ";;" },
			wantPath: "input.delimiter",
			wantSev:  SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := base()
			tt.mutate(&r)
			issues := ValidateReport(r)

			if tt.wantClean {
				for _, iss := range issues {
					if iss.Severity == SeverityError {
						t.Errorf("unexpected error issue: %v", iss)
					}
				}
				return
			}
			found := false
			for _, iss := range issues {
				if iss.Path == tt.wantPath && iss.Severity == tt.wantSev {
					found = true
					if iss.Message == "" || !strings.Contains(iss.Error(), tt.wantPath) {
						t.Errorf("issue missing message or path: %v", iss)
					}
				}
			}
			if !found {
				t.Errorf("no %s issue at %q; got %v", tt.wantSev, tt.wantPath, issues)
			}
		})
	}
}
