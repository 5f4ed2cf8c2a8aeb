package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"injuryreport/internal/config"
	"injuryreport/internal/report"
)

// TestRunEndToEnd drives the whole pipeline over a small Buddhist-era file
// and checks the written tables and QA summary.
func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "cases.csv")
	writeCSV(t, input, [][]string{
		{"adate", "prov", "sex", "age", "icdcause", "staold"},
		{"5/3/2561 10:30:00", "กรุงเทพมหานคร", "ชาย", "22", "V22", "opd"},
		{"6/3/2561 11:00:00", "กรุงเทพมหานคร", "หญิง", "35", "V43", "dead"},
		{"7/3/2561", "เชียงใหม่", "1", "50", "V01", "ipd"},
		{"", "เชียงใหม่", "2", "61", "V22", "opd"},
	})

	cfg := config.Report{
		Job: "e2e",
		Input: config.Input{
			Path:     input,
			DayFirst: true,
		},
		Date:         config.Date{Primary: "adate"},
		Geo:          config.Geo{Province: "prov"},
		Demographics: config.Demographics{Sex: "sex", Age: "age"},
		ICD10:        config.ICD10{Column: "icdcause"},
		Outcomes: config.Outcomes{
			DeathFields: []string{"staold"},
			DeathTokens: []string{"dead"},
		},
		Outputs: config.Outputs{Dir: filepath.Join(dir, "out")},
	}
	config.ApplyDefaults(&cfg)

	for _, iss := range config.ValidateReport(cfg) {
		if iss.Severity == config.SeverityError {
			t.Fatalf("config issue: %v", iss)
		}
	}
	if err := run(context.Background(), cfg, false); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	// The Buddhist year 2561 must land in 2018.
	recs := readCSV(t, filepath.Join(dir, "out", "national_quarter.csv"))
	if len(recs) != 2 {
		t.Fatalf("national_quarter = %v, want header plus one quarter", recs)
	}
	if recs[1][0] != "2018-Q1" || recs[1][1] != "3" {
		t.Errorf("national_quarter row = %v, want [2018-Q1 3]", recs[1])
	}

	recs = readCSV(t, filepath.Join(dir, "out", "province_year.csv"))
	deathsByProv := map[string]string{}
	for _, r := range recs[1:] {
		deathsByProv[r[0]] = r[3]
	}
	if deathsByProv["กรุงเทพมหานคร"] != "1" {
		t.Errorf("bangkok deaths = %q, want 1", deathsByProv["กรุงเทพมหานคร"])
	}
	if deathsByProv["เชียงใหม่"] != "0" {
		t.Errorf("chiang mai deaths = %q, want 0", deathsByProv["เชียงใหม่"])
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "qa_summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var s report.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.RawRows != 4 || s.ParsedRows != 3 || s.DroppedRows != 1 {
		t.Errorf("summary rows = %d/%d/%d, want 4/3/1", s.RawRows, s.ParsedRows, s.DroppedRows)
	}
	if s.ShareParsed != 0.75 {
		t.Errorf("share parsed = %v, want 0.75", s.ShareParsed)
	}
}

// TestRunYearFilter checks that a year restriction empties out-of-year
// quarters without failing the run.
func TestRunYearFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "cases.csv")
	writeCSV(t, input, [][]string{
		{"adate", "prov"},
		{"5/3/2561", "กรุงเทพมหานคร"},
		{"5/3/2562", "กรุงเทพมหานคร"},
	})

	year := 2019
	cfg := config.Report{
		Input:      config.Input{Path: input, DayFirst: true},
		Date:       config.Date{Primary: "adate"},
		Geo:        config.Geo{Province: "prov"},
		YearFilter: &year,
		Outputs:    config.Outputs{Dir: filepath.Join(dir, "out")},
	}
	config.ApplyDefaults(&cfg)

	if err := run(context.Background(), cfg, false); err != nil {
		t.Fatalf("run() error: %v", err)
	}

	recs := readCSV(t, filepath.Join(dir, "out", "qa_year_counts.csv"))
	if len(recs) != 2 || recs[1][0] != "2019" {
		t.Errorf("qa_year_counts = %v, want only 2019", recs)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "qa_summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var s report.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if s.ParsedRows != 2 {
		t.Errorf("parsed rows = %d, want pre-filter 2", s.ParsedRows)
	}
	if s.RowsInFilterYear == nil || *s.RowsInFilterYear != 1 {
		t.Errorf("rows in filter year = %v, want 1", s.RowsInFilterYear)
	}
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}
